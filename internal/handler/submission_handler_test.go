package handler_test

import (
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/handler"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/service"
	"github.com/noah-isme/gema-assign/internal/validation"
)

type stubSubmissionService struct {
	validator *validation.Validator
	viewer    service.Viewer
	path      string
	files     []string
	err       error
}

func (s *stubSubmissionService) Get(_ context.Context, viewer service.Viewer, assignmentID, userID uint) (dto.SubmissionResponse, error) {
	s.viewer = viewer
	return dto.SubmissionResponse{ID: 1, AssignmentID: assignmentID, UserID: userID}, s.err
}

func (s *stubSubmissionService) SaveOnlineText(_ context.Context, viewer service.Viewer, assignmentID uint, payload dto.OnlineTextRequest) (dto.SubmissionResponse, error) {
	s.viewer = viewer
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.SubmissionResponse{ID: 1, AssignmentID: assignmentID, UserID: viewer.UserID, Status: models.SubmissionStatusDraft}, s.err
}

func (s *stubSubmissionService) UploadFiles(_ context.Context, viewer service.Viewer, assignmentID uint, path string, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	s.viewer = viewer
	s.path = path
	for _, f := range files {
		s.files = append(s.files, f.Filename)
	}
	return dto.SubmissionResponse{ID: 1, AssignmentID: assignmentID, UserID: viewer.UserID}, s.err
}

func (s *stubSubmissionService) Submit(_ context.Context, viewer service.Viewer, assignmentID uint) (dto.SubmissionResponse, error) {
	s.viewer = viewer
	return dto.SubmissionResponse{ID: 1, AssignmentID: assignmentID, UserID: viewer.UserID, Status: models.SubmissionStatusSubmitted}, s.err
}

func submissionApp(t *testing.T, svc *stubSubmissionService) *fiber.App {
	v := newValidator(t)
	svc.validator = v
	app := newApp(5, models.RoleStudent)
	handler.NewSubmissionHandler(svc, v, zerolog.Nop()).Register(app.Group("/assignments"), nil)
	return app
}

func TestSubmissionHandlerSavesOnlineText(t *testing.T) {
	svc := &stubSubmissionService{}
	app := submissionApp(t, svc)

	resp := doJSON(t, app, http.MethodPost, "/assignments/7/submission/onlinetext", dto.OnlineTextRequest{Text: "My answer"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeEnvelope(t, resp)
	require.True(t, body.Success)
	require.Equal(t, "online text saved", body.Message)
	require.Equal(t, uint(5), svc.viewer.UserID)
}

func TestSubmissionHandlerReportsValidationDetails(t *testing.T) {
	app := submissionApp(t, &stubSubmissionService{})

	resp := doJSON(t, app, http.MethodPost, "/assignments/7/submission/onlinetext", dto.OnlineTextRequest{Format: "rtf"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeEnvelope(t, resp)
	require.Equal(t, "validation failed", body.Message)
	require.Contains(t, body.Details, "text")
	require.Contains(t, body.Details, "format")
}

func TestSubmissionHandlerUploadsFiles(t *testing.T) {
	svc := &stubSubmissionService{}
	app := submissionApp(t, svc)

	resp := doMultipart(t, app, "/assignments/7/submission/files", map[string]string{"path": "/figures/"}, map[string][]byte{"plot.png": []byte("png")})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "/figures/", svc.path)
	require.Equal(t, []string{"plot.png"}, svc.files)

	resp = doMultipart(t, app, "/assignments/7/submission/files", nil, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmissionHandlerMapsWorkflowErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: service.ErrSubmissionLocked, status: fiber.StatusConflict},
		{err: service.ErrSubmissionsClosed, status: fiber.StatusConflict},
		{err: service.ErrPluginDisabled, status: fiber.StatusConflict},
		{err: service.ErrNotEnrolled, status: fiber.StatusForbidden},
	}
	for _, tc := range cases {
		app := submissionApp(t, &stubSubmissionService{err: tc.err})
		resp := doJSON(t, app, http.MethodPost, "/assignments/7/submission/submit", nil)
		require.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
	}
}
