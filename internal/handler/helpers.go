package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/backup"
	"github.com/noah-isme/gema-assign/internal/middleware"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// errorStatus pairs a domain error with the status it is reported with.
type errorStatus struct {
	err    error
	status int
}

var errorStatuses = []errorStatus{
	{service.ErrAssignmentNotFound, fiber.StatusNotFound},
	{service.ErrCourseNotFound, fiber.StatusNotFound},
	{service.ErrSubmissionNotFound, fiber.StatusNotFound},
	{service.ErrGradeNotFound, fiber.StatusNotFound},
	{service.ErrUserNotFound, fiber.StatusNotFound},
	{service.ErrUnknownFileArea, fiber.StatusNotFound},
	{plugin.ErrPluginNotFound, fiber.StatusNotFound},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrNotEnrolled, fiber.StatusForbidden},
	{service.ErrSubmissionsClosed, fiber.StatusConflict},
	{service.ErrSubmissionLocked, fiber.StatusConflict},
	{service.ErrPluginDisabled, fiber.StatusConflict},
	{service.ErrInvalidGrade, fiber.StatusUnprocessableEntity},
	{service.ErrNothingStaged, fiber.StatusUnprocessableEntity},
	{service.ErrTooManyFiles, fiber.StatusUnprocessableEntity},
	{service.ErrUploadScanFailed, fiber.StatusUnprocessableEntity},
	{backup.ErrUnmappedReference, fiber.StatusUnprocessableEntity},
	{service.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge},
	{service.ErrUploadTypeNotAllowed, fiber.StatusUnsupportedMediaType},
	{service.ErrInvalidBundle, fiber.StatusBadRequest},
	{service.ErrUnknownAction, fiber.StatusBadRequest},
	{plugin.ErrUnknownAction, fiber.StatusBadRequest},
	{plugin.ErrUnknownSubtype, fiber.StatusBadRequest},
	{plugin.ErrInvalidDirection, fiber.StatusBadRequest},
	{backup.ErrInvalidBackup, fiber.StatusBadRequest},
}

// respondError reports err with the status its kind maps to. Unknown errors
// are logged and hidden behind a 500.
func respondError(c *fiber.Ctx, logger zerolog.Logger, validate *validation.Validator, err error) error {
	if validate != nil {
		if messages := validate.Messages(err); messages != nil {
			return utils.Fail(c, fiber.StatusBadRequest, "validation failed", messages)
		}
	}

	for _, candidate := range errorStatuses {
		if errors.Is(err, candidate.err) {
			return utils.SendError(c, candidate.status, err.Error())
		}
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}

// viewerFromContext builds the caller from the claims the JWT middleware stored.
func viewerFromContext(c *fiber.Ctx) service.Viewer {
	return service.Viewer{UserID: userIDFromContext(c), Role: userRoleFromContext(c)}
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// parseQueryUint reads an optional unsigned query parameter; absent means zero.
func parseQueryUint(c *fiber.Ctx, key string) (uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
