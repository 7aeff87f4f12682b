package stats

import (
	"time"
)

// DenseDailySeries expands a sparse per-day series into one entry per day of
// the interval, zero-filling missing days for heatmap rendering. An
// unspecified bound defaults to the earliest/latest day present in the
// sparse data; with no data and no bounds the result is empty.
func DenseDailySeries(sparse []DayCount, interval Interval) []DayCount {
	counts := make(map[string]int64, len(sparse))
	var minDay, maxDay time.Time
	for _, entry := range sparse {
		day, err := time.Parse(dayFormat, entry.Day)
		if err != nil {
			continue
		}
		counts[entry.Day] = entry.Count
		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if maxDay.IsZero() || day.After(maxDay) {
			maxDay = day
		}
	}

	from, to := minDay, maxDay
	if interval.From != nil {
		from = truncateToDay(*interval.From)
	}
	if interval.To != nil {
		to = truncateToDay(*interval.To)
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return []DayCount{}
	}

	dense := make([]DayCount, 0, int(to.Sub(from).Hours()/24)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayFormat)
		dense = append(dense, DayCount{Day: key, Count: counts[key]})
	}
	return dense
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
