package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(value string) *time.Time {
	parsed, err := time.Parse(dayFormat, value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestDenseDailySeriesZeroFills(t *testing.T) {
	sparse := []DayCount{
		{Day: "2026-08-01", Count: 3},
		{Day: "2026-08-04", Count: 1},
	}

	dense := DenseDailySeries(sparse, Interval{From: day("2026-08-01"), To: day("2026-08-05")})

	assert.Equal(t, []DayCount{
		{Day: "2026-08-01", Count: 3},
		{Day: "2026-08-02", Count: 0},
		{Day: "2026-08-03", Count: 0},
		{Day: "2026-08-04", Count: 1},
		{Day: "2026-08-05", Count: 0},
	}, dense)
}

func TestDenseDailySeriesBoundsDefaultToData(t *testing.T) {
	sparse := []DayCount{
		{Day: "2026-08-03", Count: 2},
		{Day: "2026-08-01", Count: 1},
	}

	dense := DenseDailySeries(sparse, Interval{})

	assert.Equal(t, []DayCount{
		{Day: "2026-08-01", Count: 1},
		{Day: "2026-08-02", Count: 0},
		{Day: "2026-08-03", Count: 2},
	}, dense)
}

func TestDenseDailySeriesEmpty(t *testing.T) {
	assert.Empty(t, DenseDailySeries(nil, Interval{}))

	// inverted interval
	dense := DenseDailySeries(nil, Interval{From: day("2026-08-05"), To: day("2026-08-01")})
	assert.Empty(t, dense)
}

func TestDenseDailySeriesSingleBound(t *testing.T) {
	sparse := []DayCount{{Day: "2026-08-03", Count: 4}}

	dense := DenseDailySeries(sparse, Interval{From: day("2026-08-01")})

	assert.Equal(t, []DayCount{
		{Day: "2026-08-01", Count: 0},
		{Day: "2026-08-02", Count: 0},
		{Day: "2026-08-03", Count: 4},
	}, dense)
}

func TestDenseDailySeriesSkipsMalformedDays(t *testing.T) {
	sparse := []DayCount{
		{Day: "not-a-day", Count: 9},
		{Day: "2026-08-02", Count: 1},
	}

	dense := DenseDailySeries(sparse, Interval{})

	assert.Equal(t, []DayCount{{Day: "2026-08-02", Count: 1}}, dense)
}
