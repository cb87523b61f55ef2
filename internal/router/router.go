package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kursus-go-api/internal/config"
	"github.com/noah-isme/kursus-go-api/internal/handler"
	"github.com/noah-isme/kursus-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CourseHandler   *handler.CourseHandler
	ExerciseHandler *handler.ExerciseHandler
	StatsHandler    *handler.StatsHandler
	Identity        fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use the provided identity middleware, or a no-op treating everyone
	// as a guest.
	identity := deps.Identity
	if identity == nil {
		identity = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", identity)
		deps.CourseHandler.Register(courses)

		if deps.ExerciseHandler != nil {
			deps.ExerciseHandler.Register(courses)
		}

		if deps.StatsHandler != nil {
			deps.StatsHandler.Register(courses)
		}
	}
}
