package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hadir-app/hadir-api/internal/config"
	"github.com/hadir-app/hadir-api/internal/handler"
	"github.com/hadir-app/hadir-api/internal/middleware"
	"github.com/hadir-app/hadir-api/internal/models"
	"github.com/hadir-app/hadir-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AttendanceHandler *handler.AttendanceHandler
	StudentHandler    *handler.StudentHandler
	TeacherHandler    *handler.TeacherHandler
	ClassHandler      *handler.ClassHandler
	DashboardHandler  *handler.DashboardHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Recording and roster management are staff-only; the dashboard is
	// open to any authenticated role.
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleTeacher)

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.AttendanceHandler != nil {
		attendances := api.Group("/attendances", jwtMiddleware, staffOnly)
		scanLimiter := middleware.RateLimit("attendance-scan", cfg.ScanRateLimit, time.Minute)
		deps.AttendanceHandler.Register(attendances, scanLimiter)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware, staffOnly)
		deps.StudentHandler.Register(students)
	}

	if deps.TeacherHandler != nil {
		teachers := api.Group("/teachers", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.TeacherHandler.Register(teachers)
	}

	if deps.ClassHandler != nil {
		classes := api.Group("/classes", jwtMiddleware, staffOnly)
		deps.ClassHandler.Register(classes)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
