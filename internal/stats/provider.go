// Package stats is the read-only statistics gateway. Two interchangeable
// backends serve the same logical queries: the primary postgres store and a
// ClickHouse warehouse fed by the replication task. Both count approved
// completions only.
package stats

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/choreboard/choreboard/internal/config"
	"github.com/choreboard/choreboard/pkg/breaker"
)

// Interval is an optional date range. A nil bound defaults to the earliest
// or latest activity present in the data.
type Interval struct {
	From *time.Time
	To   *time.Time
}

// MemberCount is one row of the per-member completion leaderboard.
type MemberCount struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Count    int64  `json:"count"`
}

// ChoreCount is one row of the per-chore completion leaderboard.
type ChoreCount struct {
	ChoreID uint   `json:"choreId"`
	Name    string `json:"name"`
	Count   int64  `json:"count"`
}

// DayCount is one day of the activity series, Day formatted as 2006-01-02.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// Provider serves the aggregation queries. DailyActivity returns a sparse
// series; callers densify it with DenseDailySeries.
type Provider interface {
	MemberLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]MemberCount, error)
	ChoreLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]ChoreCount, error)
	DailyActivity(ctx context.Context, familyID uint, interval Interval) ([]DayCount, error)
	UserCompletionCount(ctx context.Context, userID uint, interval Interval) (int64, error)
}

// BackendClickHouse selects the warehouse-backed provider.
const BackendClickHouse = "clickhouse"

// New builds the provider selected by configuration. The ClickHouse backend
// is wrapped by a circuit breaker so a sick warehouse degrades to
// "unavailable" instead of hanging requests.
func New(cfg config.StatsConfig, db *gorm.DB, warehouse *sql.DB) Provider {
	if cfg.Backend == BackendClickHouse && warehouse != nil {
		return WithBreaker(NewClickHouseProvider(warehouse), breaker.New(breaker.DefaultConfig()))
	}
	return NewGormProvider(db)
}

const dayFormat = "2006-01-02"
