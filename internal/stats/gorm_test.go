package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/db"
	"github.com/choreboard/choreboard/internal/models"
)

func setupStatsDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))
	return conn
}

// seedCompletions sets up one family with two members, two chores and a mix of
// approved and pending completions.
func seedCompletions(t *testing.T, conn *gorm.DB) (familyID uint, alice, bob models.User) {
	t.Helper()

	family := models.Family{Name: "The Does"}
	require.NoError(t, conn.Create(&family).Error)

	alice = models.User{Username: "alice", FamilyID: &family.ID}
	bob = models.User{Username: "bob", FamilyID: &family.ID}
	require.NoError(t, conn.Create(&alice).Error)
	require.NoError(t, conn.Create(&bob).Error)

	dishes := models.Chore{FamilyID: family.ID, Name: "Dishes", Valuation: 10, IsActive: true}
	trash := models.Chore{FamilyID: family.ID, Name: "Trash", Valuation: 5, IsActive: true}
	require.NoError(t, conn.Create(&dishes).Error)
	require.NoError(t, conn.Create(&trash).Error)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := []models.ChoreCompletion{
		{ChoreID: dishes.ID, FamilyID: family.ID, CompletedByID: alice.ID, Status: models.StatusApproved, CreatedAt: base},
		{ChoreID: dishes.ID, FamilyID: family.ID, CompletedByID: alice.ID, Status: models.StatusApproved, CreatedAt: base.AddDate(0, 0, 2)},
		{ChoreID: trash.ID, FamilyID: family.ID, CompletedByID: bob.ID, Status: models.StatusApproved, CreatedAt: base},
		{ChoreID: trash.ID, FamilyID: family.ID, CompletedByID: bob.ID, Status: models.StatusAwaits, CreatedAt: base},
		{ChoreID: trash.ID, FamilyID: family.ID, CompletedByID: bob.ID, Status: models.StatusCanceled, CreatedAt: base},
	}
	for i := range rows {
		require.NoError(t, conn.Create(&rows[i]).Error)
	}
	return family.ID, alice, bob
}

func TestMemberLeaderboardCountsApprovedOnly(t *testing.T) {
	conn := setupStatsDB(t)
	familyID, alice, bob := seedCompletions(t, conn)

	provider := NewGormProvider(conn)
	counts, err := provider.MemberLeaderboard(context.Background(), familyID, Interval{})
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, alice.ID, counts[0].UserID)
	assert.EqualValues(t, 2, counts[0].Count)
	assert.Equal(t, bob.ID, counts[1].UserID)
	assert.EqualValues(t, 1, counts[1].Count)
}

func TestChoreLeaderboard(t *testing.T) {
	conn := setupStatsDB(t)
	familyID, _, _ := seedCompletions(t, conn)

	provider := NewGormProvider(conn)
	counts, err := provider.ChoreLeaderboard(context.Background(), familyID, Interval{})
	require.NoError(t, err)

	require.Len(t, counts, 2)
	assert.Equal(t, "Dishes", counts[0].Name)
	assert.EqualValues(t, 2, counts[0].Count)
	assert.Equal(t, "Trash", counts[1].Name)
	assert.EqualValues(t, 1, counts[1].Count)
}

func TestDailyActivityBucketsAndFilters(t *testing.T) {
	conn := setupStatsDB(t)
	familyID, _, _ := seedCompletions(t, conn)

	provider := NewGormProvider(conn)
	series, err := provider.DailyActivity(context.Background(), familyID, Interval{})
	require.NoError(t, err)

	assert.Equal(t, []DayCount{
		{Day: "2026-08-01", Count: 2},
		{Day: "2026-08-03", Count: 1},
	}, series)

	from := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	series, err = provider.DailyActivity(context.Background(), familyID, Interval{From: &from})
	require.NoError(t, err)
	assert.Equal(t, []DayCount{{Day: "2026-08-03", Count: 1}}, series)
}

func TestUserCompletionCount(t *testing.T) {
	conn := setupStatsDB(t)
	_, alice, bob := seedCompletions(t, conn)

	provider := NewGormProvider(conn)

	count, err := provider.UserCompletionCount(context.Background(), alice.ID, Interval{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = provider.UserCompletionCount(context.Background(), bob.ID, Interval{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
