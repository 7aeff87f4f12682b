package models

import (
	"github.com/dgrijalva/jwt-go"
)

// User is a registered account. FamilyID is nil until the user creates or
// joins a family.
type User struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	Username       string  `gorm:"uniqueIndex" json:"username"`
	Name           string  `json:"name"`
	Surname        string  `json:"surname"`
	HashedPassword string  `json:"-" gorm:"column:hashed_password"`
	FamilyID       *uint   `json:"familyId,omitempty" gorm:"column:family_id"`
	IsFamilyAdmin  bool    `json:"isFamilyAdmin" gorm:"column:is_family_admin"`
	Experience     float64 `json:"experience" gorm:"default:0"`
	AvatarURL      string  `json:"avatarUrl,omitempty" gorm:"column:avatar_url"`
}

// Claims for JWT authentication
type Claims struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	IsFamilyAdmin bool   `json:"is_family_admin"`
	jwt.StandardClaims
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type AvatarRequest struct {
	URL string `json:"url"`
}
