package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/app"
	"github.com/noah-isme/gema-assign/internal/config"
	"github.com/noah-isme/gema-assign/internal/handler"
	"github.com/noah-isme/gema-assign/internal/middleware"
	"github.com/noah-isme/gema-assign/internal/router"
	cloud "github.com/noah-isme/gema-assign/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	backends, err := app.Connect(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect backends")
	}
	defer backends.Close()

	storage, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}
	backends.Storage = storage

	container, err := app.Build(context.Background(), cfg, backends, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	services := container.Services
	validator := container.Validator

	probes := make(map[string]handler.HealthProbe)
	for name, probe := range container.Probes() {
		probes[name] = probe
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    4 * cfg.UploadMaxSizeMB * 1024 * 1024,
	})

	middleware.Register(fiberApp, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    middleware.StdoutAccessLog(cfg.AppEnv),
	})
	router.Register(fiberApp, cfg, router.Dependencies{
		AssignmentHandler:  handler.NewAssignmentHandler(services.Assignments, validator, logger),
		ViewHandler:        handler.NewViewHandler(services.Views, logger),
		SubmissionHandler:  handler.NewSubmissionHandler(services.Submissions, validator, logger),
		GradeHandler:       handler.NewGradeHandler(services.Grading, validator, logger),
		BatchUploadHandler: handler.NewBatchUploadHandler(services.BatchUploads, validator, logger),
		BackupHandler:      handler.NewBackupHandler(services.Backups, logger),
		PluginAdminHandler: handler.NewPluginAdminHandler(services.PluginAdmin, validator, logger),
		ActivityHandler:    handler.NewActivityHandler(services.Activity, logger),
		HealthProbes:       probes,
		JWTMiddleware:      middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := fiberApp.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(fiberApp, logger)
}

func waitForShutdown(server *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
