package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/cache"
	"github.com/choreboard/choreboard/internal/models"
)

// UserService defines the interface for user profile operations
type UserService interface {
	GetUserByID(id uint) (models.User, error)
	UpdateProfile(id uint, req models.UpdateProfileRequest) (models.User, error)
	SetAvatar(ctx context.Context, id uint, url string) (models.User, error)
	GetAvatarURL(ctx context.Context, id uint) (string, error)
}

// userService implements the UserService interface
type userService struct {
	db      *gorm.DB
	avatars *cache.AvatarCache
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, avatars *cache.AvatarCache) UserService {
	return &userService{
		db:      db,
		avatars: avatars,
	}
}

// GetUserByID returns a user by ID
func (s *userService) GetUserByID(id uint) (models.User, error) {
	var user models.User
	result := s.db.First(&user, id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return models.User{}, apperrors.NotFound("user not found")
	}
	return user, result.Error
}

// UpdateProfile updates the user's name and surname
func (s *userService) UpdateProfile(id uint, req models.UpdateProfileRequest) (models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperrors.NotFound("user not found")
		}
		return models.User{}, err
	}

	user.Name = req.Name
	user.Surname = req.Surname
	result := s.db.Save(&user)
	return user, result.Error
}

// SetAvatar stores the avatar URL and refreshes the cache
func (s *userService) SetAvatar(ctx context.Context, id uint, url string) (models.User, error) {
	if url == "" {
		return models.User{}, apperrors.Validation("avatar url is required")
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperrors.NotFound("user not found")
		}
		return models.User{}, err
	}

	user.AvatarURL = url
	if err := s.db.Save(&user).Error; err != nil {
		return models.User{}, err
	}

	s.avatars.Set(ctx, id, url)
	return user, nil
}

// GetAvatarURL returns the user's avatar URL through the read-through cache
func (s *userService) GetAvatarURL(ctx context.Context, id uint) (string, error) {
	if url, ok := s.avatars.Get(ctx, id); ok {
		return url, nil
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return "", err
	}
	if user.AvatarURL != "" {
		s.avatars.Set(ctx, id, user.AvatarURL)
	}
	return user.AvatarURL, nil
}
