package internal

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	v1 "trackline/api/v1"
	"trackline/internal/config"
	"trackline/internal/http"
	"trackline/internal/http/middleware"
	"trackline/internal/pkg/metrics"
)

// originAllowed implements the cross-origin policy: explicit allow-list
// entries, preview deploys, and local development hosts. Everything
// else gets no grant header.
func originAllowed(cfg *config.Config, origin string) bool {
	for _, allowed := range cfg.GetAllowedOrigins() {
		if origin == allowed {
			return true
		}
	}
	if strings.HasSuffix(origin, ".vercel.app") {
		return true
	}
	return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
}

// MountAppRoutes mounts all application routes using cartridge's route API
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	publicCORSConfig := &cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return originAllowed(cfg, origin)
		},
		AllowMethods: "POST,GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Referrer, User-Agent",
	}

	// Rate limiting only in production; in development and test it
	// would interfere with seeding and test runs.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// 70/min = ~1.2 req/sec per IP - handles legitimate analytics
	// traffic while preventing abuse
	publicRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(70),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Public API config (event ingestion, decide, stats)
	// CORS runs first ensuring error responses have CORS headers
	publicAPIConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		WriteConcurrency: false,
		CustomMiddleware: []fiber.Handler{middleware.RequestID(), publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	// Tracker script delivery (GET-only, heavily cached client-side)
	sdkConfig := &cartridge.RouteConfig{
		EnableCORS:       true,
		CustomMiddleware: []fiber.Handler{publicRateLimiter},
		CORSConfig:       publicCORSConfig,
	}

	// === ROOT ROUTES ===
	srv.Get("/", http.HomeIndexAction)

	// Health check endpoint
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// Prometheus scrape endpoint
	srv.Get("/metrics", func(ctx *cartridge.Context) error {
		return metrics.Handler()(ctx.Ctx)
	})

	// === INGESTION ROUTES ===
	srv.Post("/api/v1/events", v1.TrackEventHandler, publicAPIConfig)
	srv.Options("/api/v1/events", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)
	srv.Post("/api/v1/events/beacon", v1.CreateEventBeaconHandler, publicAPIConfig)
	srv.Options("/api/v1/events/beacon", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// === EXPERIMENT ROUTES ===
	srv.Get("/api/v1/decide", v1.DecideHandler, publicAPIConfig)
	srv.Options("/api/v1/decide", func(ctx *cartridge.Context) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	}, publicAPIConfig)

	// === QUERY ROUTES ===
	srv.Get("/api/v1/stats", http.StatsIndexAction, publicAPIConfig)

	// === SDK ROUTES ===
	srv.Get("/api/v1/tracker.js", v1.GetTrackerAction, sdkConfig)
}
