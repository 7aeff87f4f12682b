package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choreboard/choreboard/pkg/breaker"
)

var errWarehouse = errors.New("warehouse unreachable")

// flakyProvider fails until healed.
type flakyProvider struct {
	healthy bool
}

func (p *flakyProvider) MemberLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]MemberCount, error) {
	if !p.healthy {
		return nil, errWarehouse
	}
	return []MemberCount{{UserID: 1, Username: "alice", Count: 3}}, nil
}

func (p *flakyProvider) ChoreLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]ChoreCount, error) {
	if !p.healthy {
		return nil, errWarehouse
	}
	return nil, nil
}

func (p *flakyProvider) DailyActivity(ctx context.Context, familyID uint, interval Interval) ([]DayCount, error) {
	if !p.healthy {
		return nil, errWarehouse
	}
	return nil, nil
}

func (p *flakyProvider) UserCompletionCount(ctx context.Context, userID uint, interval Interval) (int64, error) {
	if !p.healthy {
		return 0, errWarehouse
	}
	return 7, nil
}

func TestGuardedProviderOpensCircuit(t *testing.T) {
	inner := &flakyProvider{}
	guarded := WithBreaker(inner, breaker.New(breaker.Config{
		FailureThreshold: 2,
		Cooldown:         time.Minute,
		CallTimeout:      time.Second,
	}))
	ctx := context.Background()

	_, err := guarded.MemberLeaderboard(ctx, 1, Interval{})
	require.ErrorIs(t, err, errWarehouse)
	_, err = guarded.DailyActivity(ctx, 1, Interval{})
	require.ErrorIs(t, err, errWarehouse)

	// circuit is open now, backend is no longer consulted
	inner.healthy = true
	_, err = guarded.UserCompletionCount(ctx, 1, Interval{})
	assert.ErrorIs(t, err, breaker.ErrOpen)
}

func TestGuardedProviderRecovers(t *testing.T) {
	inner := &flakyProvider{}
	guarded := WithBreaker(inner, breaker.New(breaker.Config{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
		CallTimeout:      time.Second,
	}))
	ctx := context.Background()

	_, err := guarded.MemberLeaderboard(ctx, 1, Interval{})
	require.ErrorIs(t, err, errWarehouse)

	inner.healthy = true
	time.Sleep(20 * time.Millisecond)

	counts, err := guarded.MemberLeaderboard(ctx, 1, Interval{})
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, "alice", counts[0].Username)
}
