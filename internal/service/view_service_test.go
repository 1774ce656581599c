package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
)

func TestViewServiceStudentPage(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "onlinetext")
	views := env.views()
	ctx := context.Background()

	page, err := views.Page(ctx, env.student(0), env.fixture.Assignment.ID, PageRequest{})
	require.NoError(t, err)
	html := string(page)
	require.Contains(t, html, "Lab report")
	require.Contains(t, html, "Describe the pendulum experiment.")
	require.Contains(t, html, "Nothing has been submitted for this assignment")
	require.Contains(t, html, "Edit my submission")
	require.NotContains(t, html, "Grading summary")

	_, err = env.submissions().SaveOnlineText(ctx, env.student(0), env.fixture.Assignment.ID, dto.OnlineTextRequest{Text: "Pendulum period is 2s"})
	require.NoError(t, err)

	page, err = views.Page(ctx, env.student(0), env.fixture.Assignment.ID, PageRequest{Action: ActionView})
	require.NoError(t, err)
	html = string(page)
	require.Contains(t, html, "Draft (not submitted)")
	require.Contains(t, html, "Pendulum period is 2s")
	require.Contains(t, html, "Submit assignment")
}

func TestViewServiceGraderSummaryIsCached(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "onlinetext")
	views := env.views()
	ctx := context.Background()
	key := fmt.Sprintf("assign:summary:%d", env.fixture.Assignment.ID)

	page, err := views.Page(ctx, env.teacher(), env.fixture.Assignment.ID, PageRequest{})
	require.NoError(t, err)
	require.Contains(t, string(page), "Grading summary")
	require.True(t, env.redis.Exists(key))

	counts, err := views.Summary(ctx, env.teacher(), env.fixture.Assignment.ID)
	require.NoError(t, err)
	require.Equal(t, SummaryCounts{Participants: 2}, counts)

	_, err = env.submissions().SaveOnlineText(ctx, env.student(0), env.fixture.Assignment.ID, dto.OnlineTextRequest{Text: "answer"})
	require.NoError(t, err)
	require.False(t, env.redis.Exists(key))

	counts, err = views.Summary(ctx, env.teacher(), env.fixture.Assignment.ID)
	require.NoError(t, err)
	require.Equal(t, SummaryCounts{Participants: 2, Drafts: 1}, counts)

	_, err = views.Summary(ctx, env.student(0), env.fixture.Assignment.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestViewServiceGradingPage(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "file")
	env.enable(t, models.PluginSubtypeFeedback, "comments")
	views := env.views()
	ctx := context.Background()

	page, err := views.Page(ctx, env.teacher(), env.fixture.Assignment.ID, PageRequest{Action: ActionGrading})
	require.NoError(t, err)
	html := string(page)
	require.Contains(t, html, "Ada Lovelace")
	require.Contains(t, html, "Alan Turing")
	require.Contains(t, html, "File submissions")
	require.Contains(t, html, "Feedback comments")
	require.Contains(t, html, "Download all submissions")
	require.Contains(t, html, "View gradebook")

	_, err = views.Page(ctx, env.student(0), env.fixture.Assignment.ID, PageRequest{Action: ActionGrading})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = views.Page(ctx, env.teacher(), env.fixture.Assignment.ID, PageRequest{Action: "bogus"})
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestViewServicePluginPage(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "onlinetext")
	views := env.views()
	ctx := context.Background()

	saved, err := env.submissions().SaveOnlineText(ctx, env.student(0), env.fixture.Assignment.ID, dto.OnlineTextRequest{Text: "full text of the report"})
	require.NoError(t, err)

	req := PageRequest{Action: ActionViewPluginAssignSubmission, SubmissionID: saved.ID, Plugin: "onlinetext", ReturnAction: ActionGrading}
	page, err := views.Page(ctx, env.teacher(), env.fixture.Assignment.ID, req)
	require.NoError(t, err)
	html := string(page)
	require.Contains(t, html, "submissionfull")
	require.Contains(t, html, "full text of the report")
	require.Contains(t, html, "Ada Lovelace")
	require.Contains(t, html, "action=grading")

	_, err = views.Page(ctx, env.student(1), env.fixture.Assignment.ID, req)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestViewServiceStatus(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "onlinetext")
	env.enable(t, models.PluginSubtypeFeedback, "comments")
	views := env.views()
	ctx := context.Background()
	studentID := env.fixture.Students[0].ID

	status, err := views.Status(ctx, env.student(0), env.fixture.Assignment.ID, 0)
	require.NoError(t, err)
	require.Equal(t, "No attempt", status.StatusText)
	require.True(t, status.CanEdit)
	require.False(t, status.CanSubmit)
	require.Empty(t, status.Plugins)
	require.Nil(t, status.Feedback)
	require.Empty(t, status.TimeRemainingTag)
	require.Contains(t, status.TimeRemaining, "days")

	_, err = env.submissions().SaveOnlineText(ctx, env.student(0), env.fixture.Assignment.ID, dto.OnlineTextRequest{Text: "answer"})
	require.NoError(t, err)
	_, err = env.grading().Grade(ctx, env.teacher(), env.fixture.Assignment.ID, studentID, dto.GradeRequest{Grade: ptr(90.0), Comment: ptr("Well done"), Hidden: ptr(true)})
	require.NoError(t, err)

	status, err = views.Status(ctx, env.student(0), env.fixture.Assignment.ID, studentID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusDraft, status.SubmissionStatus)
	require.True(t, status.CanSubmit)
	require.Len(t, status.Plugins, 1)
	require.Equal(t, "onlinetext", status.Plugins[0].Type)
	require.Contains(t, status.Plugins[0].Summary, "answer")
	require.Nil(t, status.Feedback)

	_, err = env.grading().Grade(ctx, env.teacher(), env.fixture.Assignment.ID, studentID, dto.GradeRequest{Hidden: ptr(false)})
	require.NoError(t, err)

	status, err = views.Status(ctx, env.student(0), env.fixture.Assignment.ID, studentID)
	require.NoError(t, err)
	require.NotNil(t, status.Feedback)
	require.Equal(t, "90 / 100", status.Feedback.Grade)
	require.Equal(t, "Grace Hopper", status.Feedback.GradedBy)
	require.Len(t, status.Feedback.Plugins, 1)
	require.Contains(t, status.Feedback.Plugins[0].Summary, "Well done")

	_, err = views.Status(ctx, env.student(1), env.fixture.Assignment.ID, studentID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestViewServiceOverdueStatus(t *testing.T) {
	env := newTestEnv(t)
	views := env.views()
	views.now = func() time.Time { return env.now.Add(8 * 24 * time.Hour) }
	views.composer = views.composer.WithClock(views.now)

	status, err := views.Status(context.Background(), env.student(0), env.fixture.Assignment.ID, 0)
	require.NoError(t, err)
	require.Equal(t, "overdue", status.TimeRemainingTag)
	require.Contains(t, status.TimeRemaining, "Assignment is overdue by: 1 day")
}

func TestViewServiceFiles(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeSubmission, "file")
	views := env.views()
	ctx := context.Background()

	_, err := views.Files(ctx, env.student(0), env.fixture.Assignment.ID, env.fixture.Students[0].ID, models.FileAreaSubmissionFiles)
	require.ErrorIs(t, err, ErrSubmissionNotFound)

	_, err = views.Files(ctx, env.student(0), env.fixture.Assignment.ID, env.fixture.Students[0].ID, "secret")
	require.ErrorIs(t, err, ErrUnknownFileArea)

	_, err = env.submissions().UploadFiles(ctx, env.student(0), env.fixture.Assignment.ID, "/figures", []*multipart.FileHeader{buildFileHeader(t, "plot.png", pngHeader)})
	require.NoError(t, err)

	tree, err := views.Files(ctx, env.student(0), env.fixture.Assignment.ID, env.fixture.Students[0].ID, models.FileAreaSubmissionFiles)
	require.NoError(t, err)
	require.Contains(t, string(tree), "assign_files_tree_")
	require.Contains(t, string(tree), "plot.png")
}
