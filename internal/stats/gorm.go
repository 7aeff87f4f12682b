package stats

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/models"
)

// gormProvider aggregates directly over the primary transactional store.
type gormProvider struct {
	db *gorm.DB
}

// NewGormProvider creates a provider backed by the primary store
func NewGormProvider(db *gorm.DB) Provider {
	return &gormProvider{db: db}
}

func (p *gormProvider) approvedCompletions(ctx context.Context, interval Interval) *gorm.DB {
	query := p.db.WithContext(ctx).
		Model(&models.ChoreCompletion{}).
		Where("chore_completions.status = ?", models.StatusApproved)
	if interval.From != nil {
		query = query.Where("chore_completions.created_at >= ?", *interval.From)
	}
	if interval.To != nil {
		query = query.Where("chore_completions.created_at < ?", interval.To.AddDate(0, 0, 1))
	}
	return query
}

// MemberLeaderboard ranks family members by approved completions, descending.
func (p *gormProvider) MemberLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]MemberCount, error) {
	var counts []MemberCount
	err := p.approvedCompletions(ctx, interval).
		Select("users.id AS user_id, users.username AS username, COUNT(*) AS count").
		Joins("JOIN users ON users.id = chore_completions.completed_by_id").
		Where("chore_completions.family_id = ?", familyID).
		Group("users.id, users.username").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

// ChoreLeaderboard ranks the family's chores by approved completions,
// descending.
func (p *gormProvider) ChoreLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]ChoreCount, error) {
	var counts []ChoreCount
	err := p.approvedCompletions(ctx, interval).
		Select("chores.id AS chore_id, chores.name AS name, COUNT(*) AS count").
		Joins("JOIN chores ON chores.id = chore_completions.chore_id").
		Where("chore_completions.family_id = ?", familyID).
		Group("chores.id, chores.name").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

// DailyActivity returns the sparse per-day completion counts. Days are
// bucketed in Go to stay portable across SQL dialects.
func (p *gormProvider) DailyActivity(ctx context.Context, familyID uint, interval Interval) ([]DayCount, error) {
	var timestamps []time.Time
	err := p.approvedCompletions(ctx, interval).
		Where("chore_completions.family_id = ?", familyID).
		Pluck("chore_completions.created_at", &timestamps).Error
	if err != nil {
		return nil, err
	}
	return bucketByDay(timestamps), nil
}

// UserCompletionCount returns one user's approved completion total in range.
func (p *gormProvider) UserCompletionCount(ctx context.Context, userID uint, interval Interval) (int64, error) {
	var count int64
	err := p.approvedCompletions(ctx, interval).
		Where("chore_completions.completed_by_id = ?", userID).
		Count(&count).Error
	return count, err
}

func bucketByDay(timestamps []time.Time) []DayCount {
	buckets := make(map[string]int64, len(timestamps))
	for _, ts := range timestamps {
		buckets[ts.Format(dayFormat)]++
	}

	series := make([]DayCount, 0, len(buckets))
	for day, count := range buckets {
		series = append(series, DayCount{Day: day, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Day < series[j].Day })
	return series
}
