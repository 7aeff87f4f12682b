package stats

import (
	"context"

	"github.com/choreboard/choreboard/pkg/breaker"
)

// guardedProvider runs every query under a circuit breaker with a bounded
// timeout. When the circuit is open the caller gets breaker.ErrOpen, which
// the HTTP layer maps to 503.
type guardedProvider struct {
	inner Provider
	cb    *breaker.Breaker
}

// WithBreaker wraps a provider with a circuit breaker
func WithBreaker(inner Provider, cb *breaker.Breaker) Provider {
	return &guardedProvider{inner: inner, cb: cb}
}

func (g *guardedProvider) MemberLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]MemberCount, error) {
	var counts []MemberCount
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		counts, innerErr = g.inner.MemberLeaderboard(ctx, familyID, interval)
		return innerErr
	})
	return counts, err
}

func (g *guardedProvider) ChoreLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]ChoreCount, error) {
	var counts []ChoreCount
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		counts, innerErr = g.inner.ChoreLeaderboard(ctx, familyID, interval)
		return innerErr
	})
	return counts, err
}

func (g *guardedProvider) DailyActivity(ctx context.Context, familyID uint, interval Interval) ([]DayCount, error) {
	var series []DayCount
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		series, innerErr = g.inner.DailyActivity(ctx, familyID, interval)
		return innerErr
	})
	return series, err
}

func (g *guardedProvider) UserCompletionCount(ctx context.Context, userID uint, interval Interval) (int64, error) {
	var count int64
	err := g.cb.Do(ctx, func(ctx context.Context) error {
		var innerErr error
		count, innerErr = g.inner.UserCompletionCount(ctx, userID, interval)
		return innerErr
	})
	return count, err
}
