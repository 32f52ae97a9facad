package v1

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"trackline/internal/events"
	"trackline/internal/pkg/metrics"
	"trackline/internal/pkg/useragent"
)

const (
	errInvalidRequest   = "Invalid request"
	errMissingEventName = "eventName is required"
	errMissingPath      = "path is required"
)

// Country headers set by edge proxies, checked in order before any
// GeoIP lookup.
var countryHeaders = []string{"X-Vercel-IP-Country", "CF-IPCountry"}

// CreateEventParams is the JSON body accepted by the tracking endpoint.
type CreateEventParams struct {
	EventName string                 `json:"eventName"`
	Path      string                 `json:"path"`
	SessionID string                 `json:"sessionId"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// TrackEventHandler accepts one event beacon and appends it to the log.
// Bot traffic is acknowledged with an explicit ignored marker and never
// stored.
func TrackEventHandler(ctx *cartridge.Context) error {
	userAgentHeader := ctx.Get("User-Agent")
	if forwardedUA := ctx.Get("X-Forwarded-User-Agent"); forwardedUA != "" {
		userAgentHeader = forwardedUA
	}

	if useragent.IsBot(userAgentHeader) {
		ctx.Logger.Debug("Ignoring bot traffic", slog.String("userAgent", userAgentHeader))
		metrics.EventsRejected.WithLabelValues("bot").Inc()
		return ctx.Status(http.StatusOK).JSON(fiber.Map{"ignored": true})
	}

	params, err := validateAndParseRequest(ctx.Ctx)
	if err != nil {
		ctx.Logger.Debug("Failed to validate request", slog.Any("error", err))
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return handleError(ctx.Ctx, err)
	}

	input := &events.CollectEventInput{
		EventName: params.EventName,
		Path:      params.Path,
		SessionID: params.SessionID,
		Metadata:  params.Metadata,
		IPAddress: getClientIP(ctx.Ctx),
		UserAgent: userAgentHeader,
		Country:   countryFromHeaders(ctx),
	}

	if err := events.CollectEvent(ctx.DBManager, ctx.Logger, input); err != nil {
		ctx.Logger.Error("Failed to collect event", slog.Any("error", err))
		metrics.EventsRejected.WithLabelValues("storage").Inc()
		if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "busy") {
			return ctx.Status(599).JSON(fiber.Map{}) // custom status code
		}

		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	metrics.EventsAccepted.Inc()
	return ctx.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// CreateEventBeaconHandler handles events sent via navigator.sendBeacon.
// Beacons are fire-and-forget: the browser never reads the response, so
// every outcome returns 202 to stop client-side retries.
func CreateEventBeaconHandler(ctx *cartridge.Context) error {
	var params CreateEventParams
	if err := json.Unmarshal(ctx.Body(), &params); err != nil {
		ctx.Logger.Debug("Failed to parse beacon request", slog.Any("error", err))
		return ctx.SendStatus(http.StatusAccepted)
	}

	userAgentHeader := ctx.Get("User-Agent")
	if forwardedUA := ctx.Get("X-Forwarded-User-Agent"); forwardedUA != "" {
		userAgentHeader = forwardedUA
	}

	if useragent.IsBot(userAgentHeader) {
		metrics.EventsRejected.WithLabelValues("bot").Inc()
		return ctx.SendStatus(http.StatusAccepted)
	}
	if params.EventName == "" || params.Path == "" {
		metrics.EventsRejected.WithLabelValues("invalid").Inc()
		return ctx.SendStatus(http.StatusAccepted)
	}

	input := &events.CollectEventInput{
		EventName: params.EventName,
		Path:      params.Path,
		SessionID: params.SessionID,
		Metadata:  params.Metadata,
		IPAddress: getClientIP(ctx.Ctx),
		UserAgent: userAgentHeader,
		Country:   countryFromHeaders(ctx),
	}

	if err := events.CollectEvent(ctx.DBManager, ctx.Logger, input); err != nil {
		ctx.Logger.Error("Failed to collect beacon event",
			slog.Any("error", err),
			slog.String("eventName", params.EventName))
		metrics.EventsRejected.WithLabelValues("storage").Inc()
		return ctx.SendStatus(http.StatusAccepted)
	}

	metrics.EventsAccepted.Inc()
	return ctx.SendStatus(http.StatusAccepted)
}

// Experiment variants assigned by the decide endpoint.
const (
	VariantA = "variant_a"
	VariantB = "variant_b"
)

// DecideHandler assigns an experiment variant with an even split. The
// client persists the assignment in its session and tags subsequent
// events with it.
func DecideHandler(ctx *cartridge.Context) error {
	variant := VariantA
	if rand.Intn(2) == 1 {
		variant = VariantB
	}

	ctx.Set("Cache-Control", "no-store")
	return ctx.JSON(fiber.Map{
		"variant":              variant,
		"shouldShowNewFeature": variant == VariantB,
	})
}

func validateAndParseRequest(c *fiber.Ctx) (*CreateEventParams, error) {
	var params CreateEventParams
	if err := c.BodyParser(&params); err != nil {
		return nil, fiber.NewError(http.StatusBadRequest, errInvalidRequest)
	}

	if params.EventName == "" {
		return nil, fiber.NewError(http.StatusBadRequest, errMissingEventName)
	}
	if params.Path == "" {
		return nil, fiber.NewError(http.StatusBadRequest, errMissingPath)
	}

	return &params, nil
}

// countryFromHeaders reads the edge-assigned country code, if any. The
// ingestion gate falls back to a GeoIP lookup when this is empty.
func countryFromHeaders(ctx *cartridge.Context) string {
	for _, header := range countryHeaders {
		if value := ctx.Get(header); value != "" && value != "XX" {
			return strings.ToUpper(value)
		}
	}
	return ""
}

func handleError(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}

	return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
		"error": errInvalidRequest,
	})
}
