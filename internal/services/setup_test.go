package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/db"
	"github.com/choreboard/choreboard/internal/models"
)

var testSecret = []byte("test-secret")

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))
	return conn
}

func createTestUser(t *testing.T, conn *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{Username: username, Name: username, HashedPassword: "x"}
	require.NoError(t, conn.Create(&user).Error)
	return user
}

// newTestFamilyService builds a family service with a short-lived secret.
func newTestFamilyService(conn *gorm.DB) FamilyService {
	return NewFamilyService(conn, testSecret, time.Hour)
}

// joinFamily adds the user to the admin's family through the invite flow.
func joinFamily(t *testing.T, familyService FamilyService, adminID uint, user models.User, flags models.PermissionFlags) {
	t.Helper()

	token, err := familyService.CreateInviteToken(adminID, flags)
	require.NoError(t, err)

	_, err = familyService.JoinFamily(user.ID, token)
	require.NoError(t, err)
}

// choreByName fetches a seeded chore of the family.
func choreByName(t *testing.T, conn *gorm.DB, familyID uint, name string) models.Chore {
	t.Helper()

	var chore models.Chore
	require.NoError(t, conn.Where("family_id = ? AND name = ?", familyID, name).First(&chore).Error)
	return chore
}

func walletBalance(t *testing.T, conn *gorm.DB, userID uint) float64 {
	t.Helper()

	var wallet models.Wallet
	require.NoError(t, conn.Where("user_id = ?", userID).First(&wallet).Error)
	return wallet.Balance
}

func rewardCount(t *testing.T, conn *gorm.DB, completionID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, conn.Model(&models.RewardTransaction{}).
		Where("chore_completion_id = ?", completionID).Count(&count).Error)
	return count
}
