package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"trackline/internal/config"
)

// HomeIndexAction serves a minimal service descriptor at the root path.
// The dashboard lives elsewhere; this exists so load balancers and
// humans hitting the bare host get something sensible.
func HomeIndexAction(ctx *cartridge.Context) error {
	cfg := config.GetConfig()
	return ctx.JSON(fiber.Map{
		"name":        cfg.AppName,
		"environment": cfg.Environment,
		"tracker":     "/api/v1/tracker.js",
	})
}
