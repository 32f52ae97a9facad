// Package timerange maps the dashboard's range selectors onto concrete
// time windows and chart bucket sizes.
package timerange

import "time"

// Range represents one of the supported stats range selectors.
type Range string

const (
	RangeHour    Range = "1h"
	RangeDay     Range = "24h"
	RangeWeek    Range = "7d"
	RangeMonth   Range = "30d"
	RangeAllTime Range = "all"
)

// DefaultRange is used when a request carries no selector or an
// unrecognized one.
const DefaultRange = RangeWeek

// BucketSize controls the granularity of chart buckets.
type BucketSize string

const (
	BucketSizeHour BucketSize = "hour"
	BucketSizeDay  BucketSize = "day"
)

// Parse maps a raw selector string to a Range, falling back to
// DefaultRange for anything it does not recognize.
func Parse(s string) Range {
	switch Range(s) {
	case RangeHour, RangeDay, RangeWeek, RangeMonth, RangeAllTime:
		return Range(s)
	default:
		return DefaultRange
	}
}

// Start returns the exclusive lower bound of the range relative to now.
// The all-time range starts at the Unix epoch.
func (r Range) Start(now time.Time) time.Time {
	switch r {
	case RangeHour:
		return now.Add(-time.Hour)
	case RangeDay:
		return now.Add(-24 * time.Hour)
	case RangeWeek:
		return now.Add(-7 * 24 * time.Hour)
	case RangeMonth:
		return now.Add(-30 * 24 * time.Hour)
	case RangeAllTime:
		return time.Unix(0, 0).UTC()
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

// Bucket returns the chart bucket granularity for the range. Only the
// 24-hour view uses hourly buckets; everything else buckets by day.
func (r Range) Bucket() BucketSize {
	if r == RangeDay {
		return BucketSizeHour
	}
	return BucketSizeDay
}

// Truncate snaps a time to its canonical bucket boundary in UTC, so
// that events in the same hour or calendar day share one bucket key.
func Truncate(t time.Time, size BucketSize) time.Time {
	utc := t.UTC()
	if size == BucketSizeHour {
		return time.Date(utc.Year(), utc.Month(), utc.Day(), utc.Hour(), 0, 0, 0, time.UTC)
	}
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// Label renders a bucket boundary as its chart label, "3 PM" for hourly
// buckets and "Jan 15" for daily ones.
func Label(t time.Time, size BucketSize) string {
	if size == BucketSizeHour {
		return t.Format("3 PM")
	}
	return t.Format("Jan 2")
}
