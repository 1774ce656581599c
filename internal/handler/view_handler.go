package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
)

// ViewHandler serves the rendered assignment pages and their JSON counterparts.
type ViewHandler struct {
	service service.ViewService
	logger  zerolog.Logger
}

// NewViewHandler constructs the handler.
func NewViewHandler(service service.ViewService, logger zerolog.Logger) *ViewHandler {
	return &ViewHandler{
		service: service,
		logger:  logger.With().Str("component", "view_handler").Logger(),
	}
}

// Register attaches the view endpoints below /assignments.
func (h *ViewHandler) Register(router fiber.Router) {
	router.Get("/:id/view", h.page)
	router.Get("/:id/status", h.status)
	router.Get("/:id/summary", h.summary)
	router.Get("/:id/files/:userId/:area", h.files)
}

func (h *ViewHandler) page(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	req := service.PageRequest{
		Action:       c.Query("action"),
		Plugin:       c.Query("plugin"),
		ReturnAction: c.Query("returnaction"),
	}
	for key, target := range map[string]*uint{"userid": &req.UserID, "sid": &req.SubmissionID, "gid": &req.GradeID} {
		if *target, err = parseQueryUint(c, key); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	page, err := h.service.Page(c.UserContext(), viewerFromContext(c), id, req)
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}
	return utils.SendHTML(c, fiber.StatusOK, string(page))
}

func (h *ViewHandler) status(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseQueryUint(c, "userid")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	status, err := h.service.Status(c.UserContext(), viewerFromContext(c), id, userID)
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}
	return utils.SendSuccess(c, "submission status retrieved", status)
}

func (h *ViewHandler) summary(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	counts, err := h.service.Summary(c.UserContext(), viewerFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}
	return utils.SendSuccess(c, "grading summary retrieved", fiber.Map{
		"participants": counts.Participants,
		"drafts":       counts.Drafts,
		"submitted":    counts.Submitted,
	})
}

func (h *ViewHandler) files(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseUintParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	tree, err := h.service.Files(c.UserContext(), viewerFromContext(c), id, userID, c.Params("area"))
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}
	return utils.SendHTML(c, fiber.StatusOK, string(tree))
}
