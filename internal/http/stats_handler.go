package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"trackline/internal/analytics"
	"trackline/internal/config"
	"trackline/internal/events"
	"trackline/internal/pkg/async"
	"trackline/internal/pkg/metrics"
	"trackline/internal/timerange"
)

// StatsResponse is the dashboard payload assembled from the three
// aggregators plus the raw recent-events feed.
type StatsResponse struct {
	LiveUsers      int                        `json:"liveUsers"`
	TotalPageviews int                        `json:"totalPageviews"`
	UniqueVisitors int                        `json:"uniqueVisitors"`
	UniquePages    int                        `json:"uniquePages"`
	ChartData      []analytics.ChartBucket    `json:"chartData"`
	RecentEvents   []RecentEvent              `json:"recentEvents"`
	ABResults      []analytics.VariantResult  `json:"abResults"`
	VisitorStats   []analytics.VisitorSummary `json:"visitorStats"`
}

// RecentEvent is one row in the live event feed.
type RecentEvent struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	EventName string    `json:"event_name"`
	Path      string    `json:"path"`
	SessionID string    `json:"session_id"`
	IPAddress string    `json:"ip_address"`
	Country   string    `json:"country"`
}

// StatsIndexAction computes the full dashboard payload for one range
// selector. The range slice and the recent window are fetched
// concurrently; aggregation itself is in-memory and synchronous.
// Responses are point-in-time and must not be cached.
func StatsIndexAction(ctx *cartridge.Context) error {
	started := time.Now()
	cfg := config.GetConfig()

	rng := timerange.Parse(ctx.Query("range", string(timerange.DefaultRange)))
	metrics.StatsRequests.WithLabelValues(string(rng)).Inc()

	excludeIP := ""
	if ctx.Query("exclude_admin") == "true" && cfg.AdminIP != "" {
		excludeIP = cfg.AdminIP
	}

	db := ctx.DB()
	now := time.Now().UTC()

	rangeEvents, recentWindow, err := fetchEventSlices(db, ctx.Logger, rng.Start(now), excludeIP, cfg.VisitorWindowSize)
	if err != nil {
		ctx.Logger.Error("Failed to fetch stats", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch stats",
		})
	}

	summary := analytics.Summarize(rangeEvents, rng.Bucket(), now)
	resp := StatsResponse{
		LiveUsers:      summary.LiveUsers,
		TotalPageviews: summary.TotalPageviews,
		UniqueVisitors: summary.UniqueVisitors,
		UniquePages:    summary.UniquePages,
		ChartData:      summary.ChartData,
		RecentEvents:   recentFeed(recentWindow, cfg.RecentEventsLimit),
		ABResults:      analytics.Experiments(rangeEvents),
		VisitorStats:   analytics.VisitorStats(recentWindow, excludeIP),
	}

	metrics.StatsDuration.Observe(time.Since(started).Seconds())

	ctx.Set("Cache-Control", "no-store")
	return ctx.JSON(resp)
}

// fetchEventSlices runs the range query and the recent-window query
// concurrently; the aggregators have no data dependency on each other,
// only on these two slices.
func fetchEventSlices(db *gorm.DB, logger *slog.Logger, since time.Time, excludeIP string, windowSize int) ([]events.Event, []events.Event, error) {
	tasks := []async.Task{
		{
			Name: "rangeEvents",
			Execute: func() (interface{}, error) {
				return events.EventsSince(db, since, excludeIP)
			},
		},
		{
			Name: "recentWindow",
			Execute: func() (interface{}, error) {
				return events.LatestEvents(db, windowSize, excludeIP)
			},
		},
	}

	pool := async.NewPool(2)
	results := pool.Execute(context.Background(), tasks)

	for name, result := range results {
		if result.Err != nil {
			return nil, nil, fmt.Errorf("error fetching %s: %w", name, result.Err)
		}
	}

	rangeEvents, ok := results["rangeEvents"].Data.([]events.Event)
	if !ok {
		return nil, nil, fmt.Errorf("range query returned no result")
	}
	recentWindow, ok := results["recentWindow"].Data.([]events.Event)
	if !ok {
		return nil, nil, fmt.Errorf("recent-window query returned no result")
	}

	logger.Debug("Fetched event slices",
		slog.Int("range_events", len(rangeEvents)),
		slog.Int("recent_window", len(recentWindow)))

	return rangeEvents, recentWindow, nil
}

// recentFeed maps the head of the recent window onto feed rows. The
// window arrives newest first, so the feed is already ordered.
func recentFeed(recent []events.Event, limit int) []RecentEvent {
	if len(recent) > limit {
		recent = recent[:limit]
	}
	feed := make([]RecentEvent, len(recent))
	for i, e := range recent {
		feed[i] = RecentEvent{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			EventName: e.EventName,
			Path:      e.Path,
			SessionID: e.SessionID,
			IPAddress: e.IPAddress,
			Country:   e.Country,
		}
	}
	return feed
}
