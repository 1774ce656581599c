package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// SubmissionHandler exposes the student side of an assignment.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, validator *validation.Validator, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints below /assignments. uploadGuard, when
// set, runs before the file upload route.
func (h *SubmissionHandler) Register(router fiber.Router, uploadGuard fiber.Handler) {
	router.Get("/:id/submission", h.get)
	router.Post("/:id/submission/onlinetext", h.saveOnlineText)
	if uploadGuard != nil {
		router.Post("/:id/submission/files", uploadGuard, h.uploadFiles)
	} else {
		router.Post("/:id/submission/files", h.uploadFiles)
	}
	router.Post("/:id/submission/submit", h.submit)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	userID, err := parseQueryUint(c, "userid")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), viewerFromContext(c), id, userID)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) saveOnlineText(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.OnlineTextRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.SaveOnlineText(c.UserContext(), viewerFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "online text saved", submission)
}

func (h *SubmissionHandler) uploadFiles(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "files are required")
	}

	submission, err := h.service.UploadFiles(c.UserContext(), viewerFromContext(c), id, c.FormValue("path", "/"), form.File["files"])
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "files uploaded", submission)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Submit(c.UserContext(), viewerFromContext(c), id)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "submission submitted for grading", submission)
}
