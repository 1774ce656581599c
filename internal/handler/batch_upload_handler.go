package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// BatchUploadHandler drives the batch feedback file upload form.
type BatchUploadHandler struct {
	service   service.BatchUploadService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewBatchUploadHandler constructs the handler.
func NewBatchUploadHandler(service service.BatchUploadService, validator *validation.Validator, logger zerolog.Logger) *BatchUploadHandler {
	return &BatchUploadHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "batch_upload_handler").Logger(),
	}
}

// Register attaches the form endpoints below /assignments. uploadGuard, when
// set, runs before the staging route.
func (h *BatchUploadHandler) Register(router fiber.Router, uploadGuard fiber.Handler) {
	router.Post("/:id/batch-upload", h.prepare)
	if uploadGuard != nil {
		router.Post("/:id/batch-upload/files", uploadGuard, h.stage)
	} else {
		router.Post("/:id/batch-upload/files", h.stage)
	}
	router.Post("/:id/batch-upload/submit", h.submit)
}

func (h *BatchUploadHandler) prepare(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.BatchUploadPrepareRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	form, err := h.service.Prepare(c.UserContext(), viewerFromContext(c), id, payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "batch upload form prepared", form)
}

func (h *BatchUploadHandler) stage(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "files are required")
	}

	staged, err := h.service.Stage(c.UserContext(), viewerFromContext(c), id, c.FormValue("path", "/"), form.File["files"])
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "files staged", staged)
}

func (h *BatchUploadHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var bundle dto.BatchUploadBundle
	if err := c.BodyParser(&bundle); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if bundle.ID != id {
		return utils.SendError(c, fiber.StatusBadRequest, service.ErrInvalidBundle.Error())
	}

	result, err := h.service.Submit(c.UserContext(), viewerFromContext(c), bundle)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "feedback files uploaded", result)
}
