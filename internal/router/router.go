package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-assign/internal/config"
	"github.com/noah-isme/gema-assign/internal/handler"
	"github.com/noah-isme/gema-assign/internal/middleware"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler  *handler.AssignmentHandler
	ViewHandler        *handler.ViewHandler
	SubmissionHandler  *handler.SubmissionHandler
	GradeHandler       *handler.GradeHandler
	BatchUploadHandler *handler.BatchUploadHandler
	BackupHandler      *handler.BackupHandler
	PluginAdminHandler *handler.PluginAdminHandler
	ActivityHandler    *handler.ActivityHandler
	HealthProbes       map[string]handler.HealthProbe
	JWTMiddleware      fiber.Handler
	// UploadGuard throttles file uploads; defaults to cfg.UploadRatePerMinute per user.
	UploadGuard fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireUser := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{RequireUser: true})

	uploadGuard := deps.UploadGuard
	if uploadGuard == nil {
		uploadGuard = middleware.RateLimit("assign-upload", cfg.UploadRatePerMinute, time.Minute)
	}

	assign := app.Group("/api/v2/assign", jwtMiddleware, requireUser)

	// Grader-only operations under /assignments are guarded by the services,
	// since a fiber group guard would also cover the student routes.
	assignments := assign.Group("/assignments")
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(assignments)
	}
	if deps.ViewHandler != nil {
		deps.ViewHandler.Register(assignments)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(assignments, uploadGuard)
	}
	if deps.GradeHandler != nil {
		deps.GradeHandler.Register(assignments)
	}
	if deps.BatchUploadHandler != nil {
		deps.BatchUploadHandler.Register(assignments, uploadGuard)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(assignments)
	}
	if deps.BackupHandler != nil {
		deps.BackupHandler.RegisterExport(assignments)

		courses := assign.Group("/courses", middleware.RequireRole(models.RoleAdmin, models.RoleTeacher))
		deps.BackupHandler.RegisterRestore(courses)
	}

	if deps.PluginAdminHandler != nil {
		admin := app.Group("/api/v2/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.PluginAdminHandler.Register(admin.Group("/plugins"))
	}
}
