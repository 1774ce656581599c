package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
)

// ActivityHandler exposes the assignment event log.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches activity log routes to the assignments group.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/:id/logs", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	if page <= 0 {
		page = 1
	}

	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	if pageSize <= 0 {
		pageSize = 25
	} else if pageSize > 200 {
		pageSize = 200
	}

	actorID, err := parseQueryUint(c, "actor_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid actor id")
	}

	response, err := h.service.List(c.UserContext(), viewerFromContext(c), id, dto.ActivityListRequest{
		Page:      page,
		PageSize:  pageSize,
		ActorID:   actorID,
		EventType: c.Query("event_type"),
	})
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}

	return utils.SendSuccess(c, "activity logs", response)
}
