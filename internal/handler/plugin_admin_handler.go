package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/utils"
	"github.com/noah-isme/gema-assign/internal/validation"
)

// PluginAdminHandler is the HTTP face of the plugin management screen.
type PluginAdminHandler struct {
	service   service.PluginAdminService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewPluginAdminHandler constructs the handler.
func NewPluginAdminHandler(service service.PluginAdminService, validator *validation.Validator, logger zerolog.Logger) *PluginAdminHandler {
	return &PluginAdminHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "plugin_admin_handler").Logger(),
	}
}

// Register attaches the admin endpoints below /plugins.
func (h *PluginAdminHandler) Register(router fiber.Router) {
	router.Get("/:subtype", h.list)
	router.Post("/:subtype", h.execute)
}

func (h *PluginAdminHandler) list(c *fiber.Ctx) error {
	plugins, err := h.service.List(c.UserContext(), viewerFromContext(c), c.Params("subtype"))
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "plugins retrieved", plugins)
}

func (h *PluginAdminHandler) execute(c *fiber.Ctx) error {
	var payload dto.PluginActionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plugins, err := h.service.Execute(c.UserContext(), viewerFromContext(c), c.Params("subtype"), payload)
	if err != nil {
		return respondError(c, h.logger, h.validator, err)
	}
	return utils.SendSuccess(c, "plugin action applied", plugins)
}
