package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/nptel-tracker-api/internal/config"
	"github.com/noah-isme/nptel-tracker-api/internal/handler"
	"github.com/noah-isme/nptel-tracker-api/internal/middleware"
	"github.com/noah-isme/nptel-tracker-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler   *handler.StudentHandler
	ReportHandler    *handler.ReportHandler
	DashboardHandler *handler.DashboardHandler
	ImportHandler    *handler.ImportHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	students := api.Group("/students")

	// Report endpoints come first so "courses" never resolves as a roll
	// number parameter.
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(students)
	}

	if deps.ImportHandler != nil {
		deps.ImportHandler.Register(students, jwtMiddleware, middleware.RateLimit("imports", 5, time.Minute))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(students)
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api)
	}
}
