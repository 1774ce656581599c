package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin/feedbackfile"
)

func newBatchService(env *testEnv) BatchUploadService {
	return NewBatchUploadService(env.store, env.registry, env.uploads, env.strings, env.validate, env.events, testLogger())
}

func TestBatchUploadPrepareDescribesForm(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeFeedback, "file")
	svc := newBatchService(env)
	ids := []uint{env.fixture.Students[1].ID, env.fixture.Students[0].ID}

	form, err := svc.Prepare(context.Background(), env.teacher(), env.fixture.Assignment.ID, dto.BatchUploadPrepareRequest{UserIDs: ids})
	require.NoError(t, err)
	require.Equal(t, "Batch upload files for 2 user(s)", form.Header)
	require.Equal(t, "Selected users", form.SelectedLabel)
	require.Len(t, form.SelectedUsers, 2)
	require.Equal(t, "Alan Turing", form.SelectedUsers[0].FullName)
	require.True(t, form.Files.Subdirs)
	require.Equal(t, env.fixture.Course.MaxBytes, form.Files.MaxBytes)
	require.Equal(t, []string{"*"}, form.Files.AcceptedTypes)

	hidden := form.Hidden
	require.Equal(t, env.fixture.Assignment.ID, hidden.ID)
	require.Equal(t, "plugingradingbatchoperation_file_uploadfiles", hidden.Operation)
	require.Equal(t, "viewpluginpage", hidden.Action)
	require.Equal(t, "uploadfiles", hidden.PluginAction)
	require.Equal(t, "file", hidden.Plugin)
	require.Equal(t, "assignfeedback", hidden.PluginSubtype)
	require.Equal(t, joinIDs(ids), hidden.SelectedUsers)
	require.NoError(t, env.validate.Struct(hidden))
}

func TestBatchUploadPrepareCollapsesRepeatedUsers(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeFeedback, "file")
	svc := newBatchService(env)
	student := env.fixture.Students[0].ID

	form, err := svc.Prepare(context.Background(), env.teacher(), env.fixture.Assignment.ID, dto.BatchUploadPrepareRequest{UserIDs: []uint{student, student}})
	require.NoError(t, err)
	require.Equal(t, "Batch upload files for 1 user(s)", form.Header)
	require.Len(t, form.SelectedUsers, 1)
	require.Equal(t, joinIDs([]uint{student}), form.Hidden.SelectedUsers)
}
func TestBatchUploadStageAndSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeFeedback, "file")
	svc := newBatchService(env)
	ctx := context.Background()
	ids := []uint{env.fixture.Students[0].ID, env.fixture.Students[1].ID}

	form, err := svc.Prepare(ctx, env.teacher(), env.fixture.Assignment.ID, dto.BatchUploadPrepareRequest{UserIDs: ids})
	require.NoError(t, err)

	staged, err := svc.Stage(ctx, env.teacher(), env.fixture.Assignment.ID, "/marked/", []*multipart.FileHeader{
		buildFileHeader(t, "rubric.png", pngHeader),
		buildFileHeader(t, "notes.txt", []byte("see rubric")),
	})
	require.NoError(t, err)
	require.Len(t, staged, 2)

	result, err := svc.Submit(ctx, env.teacher(), form.Hidden)
	require.NoError(t, err)
	require.Equal(t, ids, result.Users)
	require.Equal(t, 2, result.FilesPerUser)

	for _, id := range ids {
		grade, err := env.store.Grades.GetByAssignmentAndUser(ctx, env.fixture.Assignment.ID, id)
		require.NoError(t, err)
		files, err := env.store.Files.ListArea(ctx, feedbackfile.Area(env.fixture.Assignment.ID, grade.ID))
		require.NoError(t, err)
		require.Len(t, files, 2)
		for _, f := range files {
			require.Equal(t, id, f.UserID)
			require.Equal(t, "/marked/", f.FilePath)
		}
	}

	remaining, err := env.store.Files.CountArea(ctx, feedbackfile.BatchArea(env.fixture.Assignment.ID, env.fixture.Teacher.ID))
	require.NoError(t, err)
	require.Zero(t, remaining)
	require.Contains(t, env.events.types(), EventFeedbackBatch)

	_, err = svc.Submit(ctx, env.teacher(), form.Hidden)
	require.ErrorIs(t, err, ErrNothingStaged)
}

func TestBatchUploadRejectsTamperedBundle(t *testing.T) {
	env := newTestEnv(t)
	env.enable(t, models.PluginSubtypeFeedback, "file")
	svc := newBatchService(env)
	ctx := context.Background()

	form, err := svc.Prepare(ctx, env.teacher(), env.fixture.Assignment.ID, dto.BatchUploadPrepareRequest{UserIDs: []uint{env.fixture.Students[0].ID}})
	require.NoError(t, err)

	bundle := form.Hidden
	bundle.Plugin = "comments"
	_, err = svc.Submit(ctx, env.teacher(), bundle)
	require.ErrorIs(t, err, ErrInvalidBundle)

	bundle = form.Hidden
	bundle.SelectedUsers = "1,abc"
	_, err = svc.Submit(ctx, env.teacher(), bundle)
	require.ErrorIs(t, err, ErrInvalidBundle)
}

func TestBatchUploadRequiresEnabledPluginAndGrader(t *testing.T) {
	env := newTestEnv(t)
	svc := newBatchService(env)
	req := dto.BatchUploadPrepareRequest{UserIDs: []uint{env.fixture.Students[0].ID}}

	_, err := svc.Prepare(context.Background(), env.teacher(), env.fixture.Assignment.ID, req)
	require.ErrorIs(t, err, ErrPluginDisabled)

	env.enable(t, models.PluginSubtypeFeedback, "file")
	_, err = svc.Prepare(context.Background(), env.student(0), env.fixture.Assignment.ID, req)
	require.ErrorIs(t, err, ErrForbidden)
}
