package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
)

func pluginNames(list []dto.PluginResponse) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Plugin)
	}
	return out
}

func TestPluginAdminServiceListAndMove(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPluginAdminService(env.registry, env.validate, env.events, testLogger())
	ctx := context.Background()
	admin := Viewer{UserID: env.fixture.Teacher.ID, Role: models.RoleAdmin}

	list, err := svc.List(ctx, admin, models.PluginSubtypeFeedback)
	require.NoError(t, err)
	require.Equal(t, []string{"comments", "file"}, pluginNames(list))
	require.False(t, list[0].CanMoveUp)
	require.True(t, list[0].CanMoveDown)
	require.True(t, list[1].CanMoveUp)
	require.False(t, list[1].CanMoveDown)
	require.Empty(t, env.events.types())

	list, err = svc.Execute(ctx, admin, models.PluginSubtypeFeedback, dto.PluginActionRequest{Action: plugin.ActionMoveUp, Plugin: "file"})
	require.NoError(t, err)
	require.Equal(t, []string{"file", "comments"}, pluginNames(list))

	list, err = svc.Execute(ctx, admin, models.PluginSubtypeFeedback, dto.PluginActionRequest{Action: plugin.ActionHide, Plugin: "comments"})
	require.NoError(t, err)
	require.False(t, list[1].Enabled)
	require.Equal(t, []string{EventPluginChanged, EventPluginChanged}, env.events.types())

	list, err = svc.Execute(ctx, admin, models.PluginSubtypeFeedback, dto.PluginActionRequest{Action: plugin.ActionShow, Plugin: "comments"})
	require.NoError(t, err)
	require.True(t, list[1].Enabled)
}

func TestPluginAdminServiceRejectsInvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPluginAdminService(env.registry, env.validate, env.events, testLogger())
	ctx := context.Background()
	admin := Viewer{UserID: env.fixture.Teacher.ID, Role: models.RoleAdmin}

	_, err := svc.List(ctx, env.teacher(), models.PluginSubtypeFeedback)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.List(ctx, admin, "assignquiz")
	require.ErrorIs(t, err, plugin.ErrUnknownSubtype)

	_, err = svc.Execute(ctx, admin, models.PluginSubtypeSubmission, dto.PluginActionRequest{Action: "explode", Plugin: "file"})
	require.Error(t, err)

	_, err = svc.Execute(ctx, admin, models.PluginSubtypeSubmission, dto.PluginActionRequest{Action: plugin.ActionHide})
	require.Error(t, err)

	_, err = svc.Execute(ctx, admin, models.PluginSubtypeSubmission, dto.PluginActionRequest{Action: plugin.ActionHide, Plugin: "portfolio"})
	require.ErrorIs(t, err, plugin.ErrPluginNotFound)
	require.Empty(t, env.events.types())
}

func TestPluginAdminServiceInstallIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPluginAdminService(env.registry, env.validate, env.events, testLogger())

	installed, err := svc.Install(context.Background())
	require.NoError(t, err)
	require.Empty(t, installed)
}
