package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// GradeHandler exposes grading endpoints to teachers.
type GradeHandler struct {
	service   service.GradingService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service service.GradingService, validator *validation.Validator, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "grade_handler").Logger(),
	}
}

// Register attaches grading endpoints below /assignments.
func (h *GradeHandler) Register(router fiber.Router) {
	router.Get("/:id/grades", h.list)
	router.Put("/:id/grades/:userId", h.grade)
}

func (h *GradeHandler) list(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.service.List(c.UserContext(), viewerFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "grades retrieved", grades)
}

func (h *GradeHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	grade, err := h.service.Grade(c.UserContext(), viewerFromContext(c), id, userID, payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "grade saved", grade)
}
