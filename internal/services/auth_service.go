package services

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(req models.RegisterRequest) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GenerateToken(user models.User) (string, error)
}

// authService implements the AuthService interface
type authService struct {
	db            *gorm.DB
	secretKey     []byte
	tokenLifetime time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(db *gorm.DB, secretKey []byte, tokenLifetime time.Duration) AuthService {
	return &authService{
		db:            db,
		secretKey:     secretKey,
		tokenLifetime: tokenLifetime,
	}
}

// Register creates a new user with a bcrypt-hashed credential
func (s *authService) Register(req models.RegisterRequest) (models.User, error) {
	if req.Username == "" || req.Password == "" {
		return models.User{}, apperrors.Validation("username and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ?", req.Username).
		Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, apperrors.Conflict("username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:       req.Username,
		Name:           req.Name,
		Surname:        req.Surname,
		HashedPassword: string(hashedPassword),
	}
	result := s.db.Create(&user)
	return user, result.Error
}

// Authenticate verifies user credentials and returns the user if valid
func (s *authService) Authenticate(username, password string) (models.User, error) {
	var user models.User
	result := s.db.Where("username = ?", username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return models.User{}, apperrors.NotFound("user not found")
		}
		return models.User{}, result.Error
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return models.User{}, apperrors.Forbidden("invalid credentials")
	}

	return user, nil
}

// GenerateToken creates a new JWT token carrying the user's id and admin flag
func (s *authService) GenerateToken(user models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID:        user.ID,
		Username:      user.Username,
		IsFamilyAdmin: user.IsFamilyAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.tokenLifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}
