package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/handler"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/service"
)

type stubPluginAdminService struct {
	viewer  service.Viewer
	subtype string
	payload dto.PluginActionRequest
	err     error
}

func (s *stubPluginAdminService) List(ctx context.Context, viewer service.Viewer, subtype string) ([]dto.PluginResponse, error) {
	return s.Execute(ctx, viewer, subtype, dto.PluginActionRequest{Action: plugin.ActionView})
}

func (s *stubPluginAdminService) Execute(_ context.Context, viewer service.Viewer, subtype string, payload dto.PluginActionRequest) ([]dto.PluginResponse, error) {
	s.viewer = viewer
	s.subtype = subtype
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	return []dto.PluginResponse{{Subtype: subtype, Plugin: "comments", Name: "Feedback comments", Enabled: true}}, nil
}

func (s *stubPluginAdminService) Install(context.Context) ([]dto.PluginResponse, error) {
	return nil, nil
}

func TestPluginAdminHandler(t *testing.T) {
	svc := &stubPluginAdminService{}
	app := newApp(1, models.RoleAdmin)
	handler.NewPluginAdminHandler(svc, newValidator(t), zerolog.Nop()).Register(app.Group("/plugins"))

	resp := doJSON(t, app, http.MethodGet, "/plugins/assignfeedback", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, models.PluginSubtypeFeedback, svc.subtype)
	require.True(t, svc.viewer.IsAdmin())

	resp = doJSON(t, app, http.MethodPost, "/plugins/assignfeedback", dto.PluginActionRequest{Action: plugin.ActionMoveDown, Plugin: "comments"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, plugin.ActionMoveDown, svc.payload.Action)

	svc.err = plugin.ErrUnknownSubtype
	resp = doJSON(t, app, http.MethodGet, "/plugins/assignquiz", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	svc.err = plugin.ErrPluginNotFound
	resp = doJSON(t, app, http.MethodPost, "/plugins/assignfeedback", dto.PluginActionRequest{Action: plugin.ActionHide, Plugin: "portfolio"})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
