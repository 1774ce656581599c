package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/observability"
	"github.com/noah-isme/gema-assign/internal/plugin"
)

// PluginAdminService exposes the site-wide plugin management screen.
type PluginAdminService interface {
	List(ctx context.Context, viewer Viewer, subtype string) ([]dto.PluginResponse, error)
	Execute(ctx context.Context, viewer Viewer, subtype string, payload dto.PluginActionRequest) ([]dto.PluginResponse, error)
	Install(ctx context.Context) ([]dto.PluginResponse, error)
}

type pluginAdminService struct {
	registry  *plugin.Registry
	validator *validator.Validate
	events    EventPublisher
	logger    zerolog.Logger
}

// NewPluginAdminService constructs a PluginAdminService instance.
func NewPluginAdminService(registry *plugin.Registry, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) PluginAdminService {
	if events == nil {
		events = NopPublisher{}
	}
	return &pluginAdminService{
		registry:  registry,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "plugin_admin_service").Logger(),
	}
}

func (s *pluginAdminService) List(ctx context.Context, viewer Viewer, subtype string) ([]dto.PluginResponse, error) {
	return s.Execute(ctx, viewer, subtype, dto.PluginActionRequest{Action: plugin.ActionView})
}

func (s *pluginAdminService) Execute(ctx context.Context, viewer Viewer, subtype string, payload dto.PluginActionRequest) ([]dto.PluginResponse, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	descriptors, err := s.registry.Execute(ctx, subtype, payload.Action, payload.Plugin)
	if err != nil {
		return nil, err
	}

	if payload.Action != "" && payload.Action != plugin.ActionView {
		observability.PluginActions().WithLabelValues(subtype, payload.Action).Inc()
		s.logger.Info().
			Str("subtype", subtype).
			Str("plugin", payload.Plugin).
			Str("action", payload.Action).
			Uint("actor_id", viewer.UserID).
			Msg("plugin action applied")
		s.events.Publish(ctx, Event{
			Type:    EventPluginChanged,
			ActorID: viewer.UserID,
			Data:    map[string]any{"subtype": subtype, "plugin": payload.Plugin, "action": payload.Action},
		})
	}

	return dto.NewPluginResponseSlice(descriptors), nil
}

// Install registers the catalog plugins that are not installed yet.
func (s *pluginAdminService) Install(ctx context.Context) ([]dto.PluginResponse, error) {
	installed, err := s.registry.Install(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewPluginResponseSlice(installed), nil
}
