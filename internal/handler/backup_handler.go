package handler

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
)

// BackupHandler exports assignments as XML documents and restores them.
type BackupHandler struct {
	service service.BackupService
	logger  zerolog.Logger
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(service service.BackupService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		service: service,
		logger:  logger.With().Str("component", "backup_handler").Logger(),
	}
}

// RegisterExport attaches the export endpoint below /assignments.
func (h *BackupHandler) RegisterExport(router fiber.Router) {
	router.Get("/:id/backup", h.export)
}

// RegisterRestore attaches the restore endpoint below /courses.
func (h *BackupHandler) RegisterRestore(router fiber.Router) {
	router.Post("/:courseId/restore", h.restore)
}

func (h *BackupHandler) export(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var doc bytes.Buffer
	if err := h.service.Export(c.UserContext(), viewerFromContext(c), id, &doc); err != nil {
		return respondError(c, h.logger, nil, err)
	}

	c.Attachment(fmt.Sprintf("assign-%d.xml", id))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(doc.Bytes())
}

func (h *BackupHandler) restore(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(c.Body()) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "backup document is required")
	}

	result, err := h.service.Restore(c.UserContext(), viewerFromContext(c), courseID, bytes.NewReader(c.Body()))
	if err != nil {
		return respondError(c, h.logger, nil, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assignment restored", result)
}
