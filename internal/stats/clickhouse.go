package stats

import (
	"context"
	"database/sql"
	"time"
)

// WarehouseTable is the denormalized completion table the replication task
// maintains in ClickHouse.
const WarehouseTable = "chore_completions"

// clickhouseProvider aggregates over the analytics warehouse. Queries hit
// the denormalized replica, so no joins are needed.
type clickhouseProvider struct {
	db *sql.DB
}

// NewClickHouseProvider creates a provider backed by the warehouse
func NewClickHouseProvider(db *sql.DB) Provider {
	return &clickhouseProvider{db: db}
}

func intervalClause(interval Interval, args []interface{}) (string, []interface{}) {
	clause := ""
	if interval.From != nil {
		clause += " AND created_at >= ?"
		args = append(args, *interval.From)
	}
	if interval.To != nil {
		clause += " AND created_at < ?"
		args = append(args, interval.To.AddDate(0, 0, 1))
	}
	return clause, args
}

// MemberLeaderboard ranks family members by replicated completions.
func (p *clickhouseProvider) MemberLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]MemberCount, error) {
	clause, args := intervalClause(interval, []interface{}{familyID})
	query := `SELECT user_id, anyLast(username) AS username, count() AS count
		FROM ` + WarehouseTable + `
		WHERE family_id = ?` + clause + `
		GROUP BY user_id
		ORDER BY count DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []MemberCount
	for rows.Next() {
		var row MemberCount
		if err := rows.Scan(&row.UserID, &row.Username, &row.Count); err != nil {
			return nil, err
		}
		counts = append(counts, row)
	}
	return counts, rows.Err()
}

// ChoreLeaderboard ranks chores by replicated completions.
func (p *clickhouseProvider) ChoreLeaderboard(ctx context.Context, familyID uint, interval Interval) ([]ChoreCount, error) {
	clause, args := intervalClause(interval, []interface{}{familyID})
	query := `SELECT chore_id, anyLast(chore_name) AS name, count() AS count
		FROM ` + WarehouseTable + `
		WHERE family_id = ?` + clause + `
		GROUP BY chore_id
		ORDER BY count DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []ChoreCount
	for rows.Next() {
		var row ChoreCount
		if err := rows.Scan(&row.ChoreID, &row.Name, &row.Count); err != nil {
			return nil, err
		}
		counts = append(counts, row)
	}
	return counts, rows.Err()
}

// DailyActivity returns the sparse per-day counts from the warehouse.
func (p *clickhouseProvider) DailyActivity(ctx context.Context, familyID uint, interval Interval) ([]DayCount, error) {
	clause, args := intervalClause(interval, []interface{}{familyID})
	query := `SELECT toDate(created_at) AS day, count() AS count
		FROM ` + WarehouseTable + `
		WHERE family_id = ?` + clause + `
		GROUP BY day
		ORDER BY day`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []DayCount
	for rows.Next() {
		var day time.Time
		var count int64
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		series = append(series, DayCount{Day: day.Format(dayFormat), Count: count})
	}
	return series, rows.Err()
}

// UserCompletionCount returns one user's replicated completion total.
func (p *clickhouseProvider) UserCompletionCount(ctx context.Context, userID uint, interval Interval) (int64, error) {
	clause, args := intervalClause(interval, []interface{}{userID})
	query := `SELECT count() FROM ` + WarehouseTable + ` WHERE user_id = ?` + clause

	var count int64
	err := p.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}
