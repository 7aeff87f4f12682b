package services

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	conn := setupTestDB(t)
	service := NewAuthService(conn, testSecret, time.Hour)

	user, err := service.Register(models.RegisterRequest{
		Username: "jdoe",
		Password: "hunter2",
		Name:     "Jamie",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.HashedPassword)
	assert.NotEqual(t, "hunter2", user.HashedPassword)

	authenticated, err := service.Authenticate("jdoe", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = service.Authenticate("jdoe", "wrong")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = service.Authenticate("nobody", "hunter2")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	conn := setupTestDB(t)
	service := NewAuthService(conn, testSecret, time.Hour)

	_, err := service.Register(models.RegisterRequest{Username: "jdoe", Password: "one"})
	require.NoError(t, err)

	_, err = service.Register(models.RegisterRequest{Username: "jdoe", Password: "two"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegisterValidation(t *testing.T) {
	conn := setupTestDB(t)
	service := NewAuthService(conn, testSecret, time.Hour)

	_, err := service.Register(models.RegisterRequest{Username: "", Password: "x"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = service.Register(models.RegisterRequest{Username: "x", Password: ""})
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestGenerateTokenCarriesIdentity(t *testing.T) {
	conn := setupTestDB(t)
	service := NewAuthService(conn, testSecret, time.Hour)

	user := createTestUser(t, conn, "jdoe")
	user.IsFamilyAdmin = true

	tokenString, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.True(t, claims.IsFamilyAdmin)
}
