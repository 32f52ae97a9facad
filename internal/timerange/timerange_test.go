package timerange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trackline/internal/timerange"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected timerange.Range
	}{
		{name: "One hour", input: "1h", expected: timerange.RangeHour},
		{name: "One day", input: "24h", expected: timerange.RangeDay},
		{name: "One week", input: "7d", expected: timerange.RangeWeek},
		{name: "One month", input: "30d", expected: timerange.RangeMonth},
		{name: "All time", input: "all", expected: timerange.RangeAllTime},
		{name: "Empty falls back to default", input: "", expected: timerange.DefaultRange},
		{name: "Garbage falls back to default", input: "90d", expected: timerange.DefaultRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, timerange.Parse(tc.input))
		})
	}
}

func TestStart(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		r        timerange.Range
		expected time.Time
	}{
		{name: "One hour back", r: timerange.RangeHour, expected: now.Add(-time.Hour)},
		{name: "24 hours back", r: timerange.RangeDay, expected: now.Add(-24 * time.Hour)},
		{name: "7 days back", r: timerange.RangeWeek, expected: now.Add(-7 * 24 * time.Hour)},
		{name: "30 days back", r: timerange.RangeMonth, expected: now.Add(-30 * 24 * time.Hour)},
		{name: "All time starts at epoch", r: timerange.RangeAllTime, expected: time.Unix(0, 0).UTC()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.r.Start(now))
		})
	}
}

func TestBucket(t *testing.T) {
	assert.Equal(t, timerange.BucketSizeHour, timerange.RangeDay.Bucket())

	for _, r := range []timerange.Range{timerange.RangeHour, timerange.RangeWeek, timerange.RangeMonth, timerange.RangeAllTime} {
		assert.Equal(t, timerange.BucketSizeDay, r.Bucket(), "range %s should bucket by day", r)
	}
}

func TestTruncate(t *testing.T) {
	input := time.Date(2024, 7, 15, 15, 42, 33, 123, time.UTC)

	assert.Equal(t,
		time.Date(2024, 7, 15, 15, 0, 0, 0, time.UTC),
		timerange.Truncate(input, timerange.BucketSizeHour))
	assert.Equal(t,
		time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		timerange.Truncate(input, timerange.BucketSizeDay))
}

func TestTruncateNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	input := time.Date(2024, 7, 15, 1, 30, 0, 0, loc) // 23:30 on July 14 UTC

	assert.Equal(t,
		time.Date(2024, 7, 14, 23, 0, 0, 0, time.UTC),
		timerange.Truncate(input, timerange.BucketSizeHour))
	assert.Equal(t,
		time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC),
		timerange.Truncate(input, timerange.BucketSizeDay))
}

func TestLabel(t *testing.T) {
	afternoon := time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "3 PM", timerange.Label(afternoon, timerange.BucketSizeHour))
	assert.Equal(t, "9 AM", timerange.Label(morning, timerange.BucketSizeHour))
	assert.Equal(t, "Jan 15", timerange.Label(afternoon, timerange.BucketSizeDay))
}
