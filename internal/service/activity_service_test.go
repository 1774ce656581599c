package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/observability"
)

func TestActivityRecorderPersistsAndForwards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recorder := NewActivityRecorder(env.store.Activity, env.events, testLogger())
	grading := NewGradingService(env.store, env.registry, env.composer, env.validate, recorder, testLogger())

	studentID := env.fixture.Students[0].ID
	_, err := grading.Grade(ctx, env.teacher(), env.fixture.Assignment.ID, studentID, dto.GradeRequest{Grade: ptr(64.0)})
	require.NoError(t, err)
	require.Equal(t, []string{EventGradeUpdated}, env.events.types())

	logs, err := NewActivityService(env.store, testLogger()).List(ctx, env.teacher(), env.fixture.Assignment.ID, dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	entry := logs.Items[0]
	require.Equal(t, EventGradeUpdated, entry.EventType)
	require.Equal(t, env.fixture.Teacher.ID, entry.ActorID)
	require.Equal(t, studentID, entry.RelatedUserID)
	require.NotEmpty(t, entry.EventID)
	require.Equal(t, int64(1), logs.Pagination.TotalItems)
}

func TestActivityRecorderMasksContactDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recorder := NewActivityRecorder(env.store.Activity, nil, testLogger())

	recorder.Publish(ctx, Event{
		Type:         EventPluginChanged,
		AssignmentID: env.fixture.Assignment.ID,
		Data:         map[string]any{"notify_email": "ada@example.com", "plugin": "file"},
	})

	logs, err := NewActivityService(env.store, testLogger()).List(ctx, env.teacher(), env.fixture.Assignment.ID, dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	require.Equal(t, "***", logs.Items[0].Metadata["notify_email"])
	require.Equal(t, "file", logs.Items[0].Metadata["plugin"])
}

func TestActivityServiceFiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recorder := NewActivityRecorder(env.store.Activity, nil, testLogger())
	assignmentID := env.fixture.Assignment.ID

	recorder.Publish(ctx, Event{Type: EventSubmissionSaved, AssignmentID: assignmentID, ActorID: env.fixture.Students[0].ID})
	recorder.Publish(ctx, Event{Type: EventSubmissionSaved, AssignmentID: assignmentID, ActorID: env.fixture.Students[1].ID})
	recorder.Publish(ctx, Event{Type: EventSubmissionSubmit, AssignmentID: assignmentID, ActorID: env.fixture.Students[0].ID})
	recorder.Publish(ctx, Event{Type: EventSubmissionSaved, AssignmentID: assignmentID + 1})

	svc := NewActivityService(env.store, testLogger())

	page, err := svc.List(ctx, env.teacher(), assignmentID, dto.ActivityListRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, int64(3), page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)

	saved, err := svc.List(ctx, env.teacher(), assignmentID, dto.ActivityListRequest{EventType: EventSubmissionSaved})
	require.NoError(t, err)
	require.Len(t, saved.Items, 2)

	byActor, err := svc.List(ctx, env.teacher(), assignmentID, dto.ActivityListRequest{ActorID: env.fixture.Students[0].ID})
	require.NoError(t, err)
	require.Len(t, byActor.Items, 2)
}

func TestActivityServiceGuards(t *testing.T) {
	env := newTestEnv(t)
	svc := NewActivityService(env.store, testLogger())

	_, err := svc.List(context.Background(), env.student(0), env.fixture.Assignment.ID, dto.ActivityListRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.List(context.Background(), env.teacher(), 9999, dto.ActivityListRequest{})
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestActivityRecorderStampsCorrelationID(t *testing.T) {
	env := newTestEnv(t)
	ctx := observability.WithCorrelationID(context.Background(), "req-7")
	recorder := NewActivityRecorder(env.store.Activity, nil, testLogger())

	recorder.Publish(ctx, Event{Type: EventSubmissionSaved, AssignmentID: env.fixture.Assignment.ID, ActorID: env.fixture.Students[0].ID})

	logs, err := NewActivityService(env.store, testLogger()).List(context.Background(), env.teacher(), env.fixture.Assignment.ID, dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	require.Equal(t, "req-7", logs.Items[0].CorrelationID)
}
