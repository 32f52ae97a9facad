// Package analytics computes dashboard aggregates from slices of the
// event log. Aggregators are pure: they never touch the database and
// derive everything from the events passed in.
package analytics

import (
	"math"
	"time"

	"trackline/internal/events"
	"trackline/internal/timerange"
)

// LiveWindow is how far back a session counts as currently active.
const LiveWindow = 5 * time.Minute

// Metrics holds the headline numbers and chart series for one range.
type Metrics struct {
	LiveUsers      int           `json:"liveUsers"`
	TotalPageviews int           `json:"totalPageviews"`
	UniqueVisitors int           `json:"uniqueVisitors"`
	UniquePages    int           `json:"uniquePages"`
	ChartData      []ChartBucket `json:"chartData"`
}

// ChartBucket is one point in the traffic chart.
type ChartBucket struct {
	Name        string  `json:"name"`
	Visitors    int     `json:"visitors"`
	Pageviews   int     `json:"pageviews"`
	UniquePages int     `json:"unique_pages"`
	AvgPerUser  float64 `json:"avg_per_user"`
}

// bucketAccumulator tracks per-bucket distinct sets while streaming
// through the event slice.
type bucketAccumulator struct {
	label     string
	pageviews int
	visitors  map[string]struct{}
	pages     map[string]struct{}
}

// Summarize computes the headline metrics and chart series for a slice
// of events already filtered to the requested range.
//
// Visitor identity is asymmetric on purpose: the headline
// uniqueVisitors prefers the server-observed address and falls back to
// the session, while chart buckets prefer the client session and fall
// back to the address. Records missing both are excluded from identity
// sets but still count toward pageviews and pages.
//
// Buckets are keyed by the canonical truncated time rather than the
// rendered label, so two calendar days that render identically (a year
// apart) stay separate. They appear in first-seen order, which is
// chronological given the facade returns events oldest first.
func Summarize(evts []events.Event, size timerange.BucketSize, now time.Time) Metrics {
	liveCutoff := now.Add(-LiveWindow)

	totalPageviews := 0
	visitors := make(map[string]struct{})
	pages := make(map[string]struct{})
	liveSessions := make(map[string]struct{})

	var order []time.Time
	buckets := make(map[time.Time]*bucketAccumulator)

	for _, e := range evts {
		isPageview := e.EventName == events.EventPageview
		if isPageview {
			totalPageviews++
		}

		if identity := firstNonEmpty(e.IPAddress, e.SessionID); identity != "" {
			visitors[identity] = struct{}{}
		}
		if e.Path != "" {
			pages[e.Path] = struct{}{}
		}
		if e.SessionID != "" && e.CreatedAt.After(liveCutoff) {
			liveSessions[e.SessionID] = struct{}{}
		}

		key := timerange.Truncate(e.CreatedAt, size)
		acc, ok := buckets[key]
		if !ok {
			acc = &bucketAccumulator{
				label:    timerange.Label(key, size),
				visitors: make(map[string]struct{}),
				pages:    make(map[string]struct{}),
			}
			buckets[key] = acc
			order = append(order, key)
		}
		if isPageview {
			acc.pageviews++
		}
		if identity := firstNonEmpty(e.SessionID, e.IPAddress); identity != "" {
			acc.visitors[identity] = struct{}{}
		}
		if e.Path != "" {
			acc.pages[e.Path] = struct{}{}
		}
	}

	chart := make([]ChartBucket, 0, len(order))
	for _, key := range order {
		acc := buckets[key]
		chart = append(chart, ChartBucket{
			Name:        acc.label,
			Visitors:    len(acc.visitors),
			Pageviews:   acc.pageviews,
			UniquePages: len(acc.pages),
			AvgPerUser:  roundRate(float64(acc.pageviews), float64(len(acc.visitors))),
		})
	}

	return Metrics{
		LiveUsers:      len(liveSessions),
		TotalPageviews: totalPageviews,
		UniqueVisitors: len(visitors),
		UniquePages:    len(pages),
		ChartData:      chart,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// roundRate divides and rounds to one decimal, yielding 0 for an empty
// denominator.
func roundRate(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return math.Round(numerator/denominator*10) / 10
}
