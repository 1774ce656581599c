package plugin_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/builtin"
	"github.com/noah-isme/gema-assign/internal/repository"
	"github.com/noah-isme/gema-assign/internal/testsupport"
)

func newRegistry(t *testing.T) (*plugin.Registry, *repository.Store, testsupport.Fixture) {
	t.Helper()
	db := testsupport.NewDB(t)
	store := repository.NewStore(db)
	fixture := testsupport.Seed(t, db, time.Now())
	catalog := builtin.Catalog(store, lang.MustNew(), builtin.Options{})
	registry := plugin.NewRegistry(store.Plugins, store.PluginConfigs, catalog, zerolog.Nop())
	_, err := registry.Install(context.Background())
	require.NoError(t, err)
	return registry, store, fixture
}

func names(list []models.PluginDescriptor) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		out = append(out, d.Plugin)
	}
	return out
}

func TestInstallOrdersFeedbackFileAfterComments(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	feedback, err := registry.List(ctx, models.PluginSubtypeFeedback)
	require.NoError(t, err)
	require.Equal(t, []string{"comments", "file"}, names(feedback))

	submission, err := registry.List(ctx, models.PluginSubtypeSubmission)
	require.NoError(t, err)
	require.Equal(t, []string{"onlinetext", "file"}, names(submission))
}

func TestInstallIsIdempotent(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	installed, err := registry.Install(ctx)
	require.NoError(t, err)
	require.Empty(t, installed)

	feedback, err := registry.List(ctx, models.PluginSubtypeFeedback)
	require.NoError(t, err)
	require.Equal(t, []string{"comments", "file"}, names(feedback))
}

func TestMoveDownThenUpRestoresOrder(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	before, err := registry.List(ctx, models.PluginSubtypeSubmission)
	require.NoError(t, err)

	moved, err := registry.Move(ctx, models.PluginSubtypeSubmission, "onlinetext", plugin.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, []string{"file", "onlinetext"}, names(moved))

	_, err = registry.Move(ctx, models.PluginSubtypeSubmission, "onlinetext", plugin.DirectionUp)
	require.NoError(t, err)

	after, err := registry.List(ctx, models.PluginSubtypeSubmission)
	require.NoError(t, err)
	require.Equal(t, names(before), names(after))
}

func TestMoveAtBoundaryIsNoop(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	list, err := registry.Move(ctx, models.PluginSubtypeFeedback, "comments", plugin.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, []string{"comments", "file"}, names(list))

	list, err = registry.Move(ctx, models.PluginSubtypeFeedback, "file", plugin.DirectionDown)
	require.NoError(t, err)
	require.Equal(t, []string{"comments", "file"}, names(list))
}

func TestMoveRejectsUnknownPluginAndDirection(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	_, err := registry.Move(ctx, models.PluginSubtypeFeedback, "editpdf", plugin.DirectionUp)
	require.ErrorIs(t, err, plugin.ErrPluginNotFound)

	_, err = registry.Move(ctx, models.PluginSubtypeFeedback, "file", "sideways")
	require.ErrorIs(t, err, plugin.ErrInvalidDirection)

	_, err = registry.List(ctx, "assignquiz")
	require.ErrorIs(t, err, plugin.ErrUnknownSubtype)
}

func TestMoveRenumbersDuplicateOrders(t *testing.T) {
	registry, store, _ := newRegistry(t)
	ctx := context.Background()

	list, err := registry.List(ctx, models.PluginSubtypeSubmission)
	require.NoError(t, err)
	for i := range list {
		list[i].SortOrder = 3
		require.NoError(t, store.Plugins.Update(ctx, &list[i]))
	}

	moved, err := registry.Move(ctx, models.PluginSubtypeSubmission, "file", plugin.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, []string{"file", "onlinetext"}, names(moved))

	listed, err := registry.List(ctx, models.PluginSubtypeSubmission)
	require.NoError(t, err)
	require.Equal(t, []string{"file", "onlinetext"}, names(listed))
}

func TestExecuteHideShow(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	list, err := registry.Execute(ctx, models.PluginSubtypeSubmission, plugin.ActionHide, "file")
	require.NoError(t, err)
	require.True(t, list[1].Hidden)

	enabled, err := registry.IsEnabled(ctx, models.PluginSubtypeSubmission, "file")
	require.NoError(t, err)
	require.False(t, enabled)

	_, err = registry.Execute(ctx, models.PluginSubtypeSubmission, plugin.ActionShow, "file")
	require.NoError(t, err)
	enabled, err = registry.IsEnabled(ctx, models.PluginSubtypeSubmission, "file")
	require.NoError(t, err)
	require.True(t, enabled)

	_, err = registry.Execute(ctx, models.PluginSubtypeSubmission, "uninstall", "file")
	require.ErrorIs(t, err, plugin.ErrUnknownAction)

	_, err = registry.IsEnabled(ctx, models.PluginSubtypeSubmission, "editpdf")
	require.ErrorIs(t, err, plugin.ErrPluginNotFound)
}

func TestBoundPluginsFollowConfigAndVisibility(t *testing.T) {
	registry, store, fixture := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, store.PluginConfigs.Upsert(ctx, &models.AssignmentPluginConfig{
		AssignmentID: fixture.Assignment.ID,
		Subtype:      models.PluginSubtypeSubmission,
		Plugin:       "onlinetext",
		Enabled:      true,
	}))
	require.NoError(t, registry.Hide(ctx, models.PluginSubtypeSubmission, "file"))

	plugins, err := registry.SubmissionPlugins(ctx, fixture.Assignment)
	require.NoError(t, err)
	require.Len(t, plugins, 2)
	require.Equal(t, "onlinetext", plugins[0].Type())
	require.True(t, plugins[0].IsEnabled())
	require.Equal(t, "file", plugins[1].Type())
	require.False(t, plugins[1].IsVisible())
	require.False(t, plugins[1].IsEnabled())
	require.Equal(t, "Online text", plugins[0].Name())
}

func TestOnlineTextSummaryIsShortened(t *testing.T) {
	registry, store, fixture := newRegistry(t)
	ctx := context.Background()

	submission := models.Submission{AssignmentID: fixture.Assignment.ID, UserID: fixture.Students[0].ID, Status: models.SubmissionStatusDraft}
	require.NoError(t, store.Submissions.Create(ctx, &submission))
	require.NoError(t, store.OnlineTexts.Save(ctx, &models.OnlineTextSubmission{
		AssignmentID: fixture.Assignment.ID,
		SubmissionID: submission.ID,
		OnlineText:   "<p>" + strings.Repeat("pendulum swings ", 20) + "</p>",
		OnlineFormat: models.TextFormatHTML,
	}))

	p, err := registry.SubmissionPlugin(ctx, fixture.Assignment, "onlinetext")
	require.NoError(t, err)

	summary, err := p.ViewSummary(ctx, submission)
	require.NoError(t, err)
	require.LessOrEqual(t, len([]rune(string(summary))), 143)
	require.True(t, strings.HasSuffix(string(summary), "..."))
	require.True(t, p.ShowViewLink(ctx, submission))

	full, err := p.View(ctx, submission)
	require.NoError(t, err)
	require.Contains(t, string(full), "<p>pendulum swings")
}

func TestFileSummaryCollapsesToCount(t *testing.T) {
	registry, store, fixture := newRegistry(t)
	ctx := context.Background()

	submission := models.Submission{AssignmentID: fixture.Assignment.ID, UserID: fixture.Students[0].ID, Status: models.SubmissionStatusDraft}
	require.NoError(t, store.Submissions.Create(ctx, &submission))

	p, err := registry.SubmissionPlugin(ctx, fixture.Assignment, "file")
	require.NoError(t, err)

	addFile := func(name string) {
		require.NoError(t, store.Files.Create(ctx, &models.StoredFile{
			ContextID: fixture.Assignment.ID,
			Component: models.ComponentSubmissionFile,
			FileArea:  models.FileAreaSubmissionFiles,
			ItemID:    submission.ID,
			UserID:    fixture.Students[0].ID,
			FilePath:  "/",
			FileName:  name,
			URL:       "https://cdn.example.com/" + name,
			MimeType:  "application/pdf",
		}))
	}

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		addFile(name)
	}
	summary, err := p.ViewSummary(ctx, submission)
	require.NoError(t, err)
	require.Contains(t, string(summary), "<ul>")
	require.False(t, p.ShowViewLink(ctx, submission))

	addFile("f.pdf")
	summary, err = p.ViewSummary(ctx, submission)
	require.NoError(t, err)
	require.Equal(t, "6 files", string(summary))
	require.True(t, p.ShowViewLink(ctx, submission))

	full, err := p.View(ctx, submission)
	require.NoError(t, err)
	require.Contains(t, string(full), "f.pdf")
}
