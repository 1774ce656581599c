package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service   service.AssignmentService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, validator *validation.Validator, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	query := dto.AssignmentListQuery{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}

	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if courseID > 0 {
		query.CourseID = &courseID
	}
	if query.Page, err = parseQueryInt(c, "page"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if query.PageSize, err = parseQueryInt(c, "page_size"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	assignments, err := h.service.List(c.UserContext(), query)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}

	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Create(c.UserContext(), viewerFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment created", assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.AssignmentUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Update(c.UserContext(), viewerFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), viewerFromContext(c), id); err != nil {
		return respondError(c, h.logger, h.validator, err)
	}

	return utils.SendSuccess(c, "assignment deleted", fiber.Map{"id": id})
}
