package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/apperrors"
	"github.com/choreboard/choreboard/internal/models"
)

// twoMemberFamily creates a family with an admin and one joined member, both
// required confirmers, and returns the seeded "Wash the dishes" chore
// (valuation 10).
func twoMemberFamily(t *testing.T, conn *gorm.DB) (admin, member models.User, chore models.Chore) {
	t.Helper()

	familyService := newTestFamilyService(conn)
	admin = createTestUser(t, conn, "admin")
	member = createTestUser(t, conn, "member")

	detail, err := familyService.CreateFamily(admin.ID, "The Smiths", "home")
	require.NoError(t, err)

	joinFamily(t, familyService, admin.ID, member,
		models.PermissionFlags{ShouldConfirmChoreCompletion: true})

	chore = choreByName(t, conn, detail.Family.ID, "Wash the dishes")
	return admin, member, chore
}

func TestCreateCompletionAutoApprovesWithoutConfirmers(t *testing.T) {
	conn := setupTestDB(t)
	familyService := newTestFamilyService(conn)
	admin := createTestUser(t, conn, "solo")

	detail, err := familyService.CreateFamily(admin.ID, "Solo family", "")
	require.NoError(t, err)
	chore := choreByName(t, conn, detail.Family.ID, "Wash the dishes")

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(admin.ID, chore.ID, "done")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, completion.Status)
	assert.Equal(t, chore.Valuation, walletBalance(t, conn, admin.ID))
	assert.EqualValues(t, 1, rewardCount(t, conn, completion.ID))

	var reward models.RewardTransaction
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).First(&reward).Error)
	assert.Equal(t, chore.Valuation, reward.Coins)

	var updatedUser models.User
	require.NoError(t, conn.First(&updatedUser, admin.ID).Error)
	assert.Equal(t, chore.Valuation, updatedUser.Experience)

	var updatedFamily models.Family
	require.NoError(t, conn.First(&updatedFamily, detail.Family.ID).Error)
	assert.Equal(t, chore.Valuation, updatedFamily.Experience)
}

func TestCompletionAwaitsUntilConfirmed(t *testing.T) {
	conn := setupTestDB(t)
	admin, member, chore := twoMemberFamily(t, conn)

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(member.ID, chore.ID, "scrubbed everything")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaits, completion.Status)
	assert.Zero(t, walletBalance(t, conn, member.ID))

	// the completer is excluded, so only the admin must confirm
	var confirmations []models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).Find(&confirmations).Error)
	require.Len(t, confirmations, 1)
	assert.Equal(t, admin.ID, confirmations[0].UserID)
	assert.Equal(t, models.StatusAwaits, confirmations[0].Status)

	_, err = service.SetConfirmationStatus(admin.ID, confirmations[0].ID, models.StatusApproved)
	require.NoError(t, err)

	var updated models.ChoreCompletion
	require.NoError(t, conn.First(&updated, completion.ID).Error)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, chore.Valuation, walletBalance(t, conn, member.ID))
	assert.EqualValues(t, 1, rewardCount(t, conn, completion.ID))
}

func TestSingleCancellationVetoesCompletion(t *testing.T) {
	conn := setupTestDB(t)
	familyService := newTestFamilyService(conn)
	admin := createTestUser(t, conn, "admin")
	second := createTestUser(t, conn, "second")
	worker := createTestUser(t, conn, "worker")

	detail, err := familyService.CreateFamily(admin.ID, "Big family", "")
	require.NoError(t, err)
	joinFamily(t, familyService, admin.ID, second,
		models.PermissionFlags{ShouldConfirmChoreCompletion: true})
	joinFamily(t, familyService, admin.ID, worker, models.PermissionFlags{})
	chore := choreByName(t, conn, detail.Family.ID, "Take out the trash")

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(worker.ID, chore.ID, "")
	require.NoError(t, err)

	var confirmations []models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).
		Order("user_id").Find(&confirmations).Error)
	require.Len(t, confirmations, 2)

	_, err = service.SetConfirmationStatus(confirmations[0].UserID, confirmations[0].ID, models.StatusApproved)
	require.NoError(t, err)

	_, err = service.SetConfirmationStatus(confirmations[1].UserID, confirmations[1].ID, models.StatusCanceled)
	require.NoError(t, err)

	var updated models.ChoreCompletion
	require.NoError(t, conn.First(&updated, completion.ID).Error)
	assert.Equal(t, models.StatusCanceled, updated.Status)
	assert.Zero(t, walletBalance(t, conn, worker.ID))
	assert.Zero(t, rewardCount(t, conn, completion.ID))
}

func TestLastApprovalFlipsCompletionOnce(t *testing.T) {
	conn := setupTestDB(t)
	familyService := newTestFamilyService(conn)
	admin := createTestUser(t, conn, "admin")
	second := createTestUser(t, conn, "second")
	worker := createTestUser(t, conn, "worker")

	detail, err := familyService.CreateFamily(admin.ID, "Big family", "")
	require.NoError(t, err)
	joinFamily(t, familyService, admin.ID, second,
		models.PermissionFlags{ShouldConfirmChoreCompletion: true})
	joinFamily(t, familyService, admin.ID, worker, models.PermissionFlags{})
	chore := choreByName(t, conn, detail.Family.ID, "Cook dinner")

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(worker.ID, chore.ID, "")
	require.NoError(t, err)

	var confirmations []models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).
		Order("user_id").Find(&confirmations).Error)
	require.Len(t, confirmations, 2)

	// the first approval must not flip the completion
	_, err = service.SetConfirmationStatus(confirmations[0].UserID, confirmations[0].ID, models.StatusApproved)
	require.NoError(t, err)

	var mid models.ChoreCompletion
	require.NoError(t, conn.First(&mid, completion.ID).Error)
	assert.Equal(t, models.StatusAwaits, mid.Status)
	assert.Zero(t, rewardCount(t, conn, completion.ID))

	// the second and last one must
	_, err = service.SetConfirmationStatus(confirmations[1].UserID, confirmations[1].ID, models.StatusApproved)
	require.NoError(t, err)

	var updated models.ChoreCompletion
	require.NoError(t, conn.First(&updated, completion.ID).Error)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.EqualValues(t, 1, rewardCount(t, conn, completion.ID))
	assert.Equal(t, chore.Valuation, walletBalance(t, conn, worker.ID))

	var remaining int64
	require.NoError(t, conn.Model(&models.ChoreConfirmation{}).
		Where("chore_completion_id = ? AND status = ?", completion.ID, models.StatusAwaits).
		Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestSetConfirmationBackToAwaitsRejected(t *testing.T) {
	conn := setupTestDB(t)
	admin, member, chore := twoMemberFamily(t, conn)

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(member.ID, chore.ID, "")
	require.NoError(t, err)

	var confirmation models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).First(&confirmation).Error)

	_, err = service.SetConfirmationStatus(admin.ID, confirmation.ID, models.StatusAwaits)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestConfirmationOwnershipEnforced(t *testing.T) {
	conn := setupTestDB(t)
	_, member, chore := twoMemberFamily(t, conn)

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(member.ID, chore.ID, "")
	require.NoError(t, err)

	var confirmation models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).First(&confirmation).Error)

	// the completer does not own the admin's confirmation
	_, err = service.SetConfirmationStatus(member.ID, confirmation.ID, models.StatusApproved)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestFinalizedConfirmationCannotBeChanged(t *testing.T) {
	conn := setupTestDB(t)
	admin, member, chore := twoMemberFamily(t, conn)

	service := NewCompletionService(conn, nil)
	completion, err := service.CreateCompletion(member.ID, chore.ID, "")
	require.NoError(t, err)

	var confirmation models.ChoreConfirmation
	require.NoError(t, conn.Where("chore_completion_id = ?", completion.ID).First(&confirmation).Error)

	_, err = service.SetConfirmationStatus(admin.ID, confirmation.ID, models.StatusApproved)
	require.NoError(t, err)

	// a second "last approval" must not produce a second reward
	_, err = service.SetConfirmationStatus(admin.ID, confirmation.ID, models.StatusApproved)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.EqualValues(t, 1, rewardCount(t, conn, completion.ID))
	assert.Equal(t, chore.Valuation, walletBalance(t, conn, member.ID))
}

func TestCompleteInactiveChoreFails(t *testing.T) {
	conn := setupTestDB(t)
	_, member, chore := twoMemberFamily(t, conn)

	require.NoError(t, conn.Model(&models.Chore{}).
		Where("id = ?", chore.ID).Update("is_active", false).Error)

	service := NewCompletionService(conn, nil)
	_, err := service.CreateCompletion(member.ID, chore.ID, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListCompletionsPaged(t *testing.T) {
	conn := setupTestDB(t)
	_, member, chore := twoMemberFamily(t, conn)

	service := NewCompletionService(conn, nil)
	for i := 0; i < 5; i++ {
		_, err := service.CreateCompletion(member.ID, chore.ID, "")
		require.NoError(t, err)
	}

	page, err := service.ListCompletions(member.ID, 3, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Len(t, page.Items, 3)
	require.NotNil(t, page.Items[0].Chore)
	assert.Equal(t, chore.Name, page.Items[0].Chore.Name)
}
