package middleware

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

const accessLogFormat = "${time} ${status} ${latency} ${method} ${path} cid=${locals:correlation_id}\n"

// Config customises the middleware registration pipeline.
type Config struct {
	Logger *zerolog.Logger
	// AllowOrigins is the CORS origin list; "*" when empty.
	AllowOrigins string
	// AccessLog writes a plain access line per request when set.
	AccessLog io.Writer
}

// Register attaches the middlewares shared by every route: panic recovery,
// correlation ids, metrics with structured logs, access log and CORS.
func Register(app *fiber.App, cfg Config) {
	requestLogger := zerolog.New(io.Discard)
	if cfg.Logger != nil {
		requestLogger = *cfg.Logger
	}
	origins := cfg.AllowOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(CorrelationID())
	app.Use(Observability(requestLogger))
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{Format: accessLogFormat, Output: cfg.AccessLog}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderCorrelationID,
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition, Retry-After, " + HeaderCorrelationID,
	}))
}

// StdoutAccessLog returns the access log writer for non-test environments.
func StdoutAccessLog(appEnv string) io.Writer {
	if appEnv == "test" {
		return nil
	}
	return os.Stdout
}
