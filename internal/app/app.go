// Package app wires repositories, plugins, renderers and services into the
// graph shared by the HTTP server and the assignctl CLI.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/config"
	"github.com/noah-isme/gema-assign/internal/database"
	"github.com/noah-isme/gema-assign/internal/filetree"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/builtin"
	"github.com/noah-isme/gema-assign/internal/render"
	"github.com/noah-isme/gema-assign/internal/repository"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// Backends are the external connections the container runs on. Redis and NATS
// are optional; Storage may be nil for callers that never upload.
type Backends struct {
	DB      *gorm.DB
	Redis   *redis.Client
	NATS    *nats.Conn
	Storage service.FileStorage
}

const connectTimeout = 10 * time.Second

// Connect opens the database, redis and NATS connections described by cfg and
// migrates the schema.
func Connect(ctx context.Context, cfg config.Config) (Backends, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := database.ConnectPostgres(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DatabaseMaxConns,
		ConnMaxLifetime: 30 * time.Minute,
		Debug:           cfg.DatabaseDebug,
	})
	if err != nil {
		return Backends{}, err
	}
	if err := database.Migrate(db); err != nil {
		return Backends{}, err
	}

	backends := Backends{DB: db}

	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURL, clientName(cfg.AppName))
		if err != nil {
			return Backends{}, err
		}
		backends.Redis = client
	}

	conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		backends.Close()
		return Backends{}, err
	}
	backends.NATS = conn

	return backends, nil
}

// clientName turns the application name into a redis CLIENT SETNAME value,
// which may not contain spaces.
func clientName(appName string) string {
	return strings.Join(strings.Fields(strings.ToLower(appName)), "-")
}

// Close releases the redis and NATS connections.
func (b Backends) Close() {
	if b.NATS != nil {
		b.NATS.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}

// Services groups the domain services.
type Services struct {
	Assignments  service.AssignmentService
	Views        service.ViewService
	Submissions  service.SubmissionService
	Grading      service.GradingService
	BatchUploads service.BatchUploadService
	Backups      service.BackupService
	PluginAdmin  service.PluginAdminService
	Activity     service.ActivityService
}

// Container is the wired application.
type Container struct {
	Config    config.Config
	Logger    zerolog.Logger
	Backends  Backends
	Store     *repository.Store
	Strings   *lang.Strings
	Validator *validation.Validator
	Registry  *plugin.Registry
	Composer  *render.Composer
	Events    service.EventPublisher
	Cache     *service.SummaryCache
	Services  Services
}

// Build wires every component on top of backends and installs the built-in
// plugins that are not registered yet.
func Build(ctx context.Context, cfg config.Config, backends Backends, logger zerolog.Logger) (*Container, error) {
	texts, err := lang.New()
	if err != nil {
		return nil, fmt.Errorf("load strings: %w", err)
	}

	validator, err := validation.New(texts)
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}

	store := repository.NewStore(backends.DB)

	var tree filetree.Options
	if cfg.EnablePlagiarism {
		tree.Decorate = filetree.ChecksumBadge
	}

	catalog := builtin.Catalog(store, texts, builtin.Options{
		SummaryMaxFiles: cfg.SummaryMaxFiles,
		Tree:            tree,
	})
	registry := plugin.NewRegistry(store.Plugins, store.PluginConfigs, catalog, logger)
	if _, err := registry.Install(ctx); err != nil {
		return nil, fmt.Errorf("install plugins: %w", err)
	}

	composer := render.NewComposer(texts, render.Options{
		Links: render.Links{Base: cfg.PublicBaseURL},
		Tree:  tree,
		Files: store.Files,
	})

	var broker service.EventPublisher = service.NopPublisher{}
	if backends.Redis != nil || backends.NATS != nil {
		broker = service.NewEventPublisher(backends.Redis, backends.NATS, cfg.EventChannel, logger)
	}
	events := service.NewActivityRecorder(store.Activity, broker, logger)

	cache := service.NewSummaryCache(backends.Redis, cfg.SummaryCacheTTL, logger)
	uploads := service.NewUploadService(backends.Storage, cfg.UploadMaxSizeMB, logger)
	validate := validator.Validate

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Backends:  backends,
		Store:     store,
		Strings:   texts,
		Validator: validator,
		Registry:  registry,
		Composer:  composer,
		Events:    events,
		Cache:     cache,
		Services: Services{
			Assignments:  service.NewAssignmentService(store, registry, validate, events, logger),
			Views:        service.NewViewService(store, registry, composer, texts, cache, logger),
			Submissions:  service.NewSubmissionService(store, registry, uploads, validate, events, cache, logger),
			Grading:      service.NewGradingService(store, registry, composer, validate, events, logger),
			BatchUploads: service.NewBatchUploadService(store, registry, uploads, texts, validate, events, logger),
			Backups:      service.NewBackupService(store, events, logger),
			PluginAdmin:  service.NewPluginAdminService(registry, validate, events, logger),
			Activity:     service.NewActivityService(store, logger),
		},
	}, nil
}

// Probes returns health checks for the database and, when configured, redis
// and NATS.
func (c *Container) Probes() map[string]func(ctx context.Context) error {
	probes := map[string]func(ctx context.Context) error{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.Backends.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.Backends.Redis != nil {
		probes["redis"] = func(ctx context.Context) error {
			return c.Backends.Redis.Ping(ctx).Err()
		}
	}
	if c.Backends.NATS != nil {
		probes["nats"] = func(context.Context) error {
			if !c.Backends.NATS.IsConnected() {
				return fmt.Errorf("nats connection is %s", c.Backends.NATS.Status())
			}
			return nil
		}
	}
	return probes
}
