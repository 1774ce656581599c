package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-assign/internal/app"
	"github.com/noah-isme/gema-assign/internal/config"
	"github.com/noah-isme/gema-assign/internal/handler"
	"github.com/noah-isme/gema-assign/internal/middleware"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/router"
	"github.com/noah-isme/gema-assign/internal/testsupport"
)

const testSecret = "router-secret"

type cdnStub struct{}

func (cdnStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, reader)
	return "https://cdn.test/" + name, err
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	app     *fiber.App
	fixture testsupport.Fixture
}

func newServer(t *testing.T) server {
	t.Helper()

	db := testsupport.NewDB(t)
	fixture := testsupport.Seed(t, db, time.Now())
	testsupport.EnablePlugins(t, db, fixture.Assignment.ID, models.PluginSubtypeSubmission, "onlinetext")
	testsupport.EnablePlugins(t, db, fixture.Assignment.ID, models.PluginSubtypeFeedback, "comments")

	redisServer, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(redisServer.Close)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Config{
		AppName:         "Assign Test",
		AppEnv:          "test",
		PublicBaseURL:   "/api/v2/assign",
		EventChannel:    "test:assign",
		JWTSecret:       testSecret,
		SummaryCacheTTL: time.Minute,
		UploadMaxSizeMB: 5,
		SummaryMaxFiles: 5,
	}
	logger := zerolog.New(io.Discard)

	container, err := app.Build(context.Background(), cfg, app.Backends{DB: db, Redis: client, Storage: cdnStub{}}, logger)
	require.NoError(t, err)

	probes := make(map[string]handler.HealthProbe)
	for name, probe := range container.Probes() {
		probes[name] = probe
	}

	services := container.Services
	fiberApp := fiber.New()
	middleware.Register(fiberApp, middleware.Config{Logger: &logger})
	router.Register(fiberApp, cfg, router.Dependencies{
		AssignmentHandler:  handler.NewAssignmentHandler(services.Assignments, container.Validator, logger),
		ViewHandler:        handler.NewViewHandler(services.Views, logger),
		SubmissionHandler:  handler.NewSubmissionHandler(services.Submissions, container.Validator, logger),
		GradeHandler:       handler.NewGradeHandler(services.Grading, container.Validator, logger),
		BatchUploadHandler: handler.NewBatchUploadHandler(services.BatchUploads, container.Validator, logger),
		BackupHandler:      handler.NewBackupHandler(services.Backups, logger),
		PluginAdminHandler: handler.NewPluginAdminHandler(services.PluginAdmin, container.Validator, logger),
		ActivityHandler:    handler.NewActivityHandler(services.Activity, logger),
		HealthProbes:       probes,
		JWTMiddleware:      middleware.JWTProtected(testSecret),
	})

	return server{app: fiberApp, fixture: fixture}
}

func token(t *testing.T, userID uint, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s server) do(t *testing.T, method, path, bearer string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Assign Test", resp.Header.Get("X-Application"))

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	var health handler.HealthResponse
	require.NoError(t, json.Unmarshal(env.Data, &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Dependencies["database"])
	require.Equal(t, "ok", health.Dependencies["redis"])

	resp, body = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "go_goroutines")
}

func TestAssignRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/v2/assign/assignments", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v2/assign/assignments", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitAndGradeFlow(t *testing.T) {
	s := newServer(t)
	assignmentPath := "/api/v2/assign/assignments/" + itoa(s.fixture.Assignment.ID)
	student := s.fixture.Students[0]
	studentToken := token(t, student.ID, models.RoleStudent)
	teacherToken := token(t, s.fixture.Teacher.ID, models.RoleTeacher)

	resp, _ := s.do(t, http.MethodPost, assignmentPath+"/submission/onlinetext", studentToken, map[string]string{"text": "Period grows with length."})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, assignmentPath+"/submission/submit", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, assignmentPath+"/view", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	require.Contains(t, string(body), "Period grows with length.")

	resp, _ = s.do(t, http.MethodPut, assignmentPath+"/grades/"+itoa(student.ID), studentToken, map[string]any{"grade": 100})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, assignmentPath+"/grades/"+itoa(student.ID), teacherToken, map[string]any{"grade": 88, "comment": "Well argued"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, assignmentPath+"/status", studentToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	var status struct {
		SubmissionStatus string `json:"submission_status"`
		Feedback         *struct {
			Grade string `json:"grade"`
		} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &status))
	require.Equal(t, models.SubmissionStatusSubmitted, status.SubmissionStatus)
	require.NotNil(t, status.Feedback)
	require.Equal(t, "88 / 100", status.Feedback.Grade)

	resp, body = s.do(t, http.MethodGet, assignmentPath+"/logs?event_type=grade.updated", teacherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &env))
	var logs struct {
		Items []struct {
			ActorID uint `json:"actor_id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &logs))
	require.Len(t, logs.Items, 1)
	require.Equal(t, s.fixture.Teacher.ID, logs.Items[0].ActorID)

	resp, body = s.do(t, http.MethodGet, assignmentPath+"/backup", teacherToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "xml")
	require.Contains(t, string(body), "Period grows with length.")
}

func TestRestoreRequiresGrader(t *testing.T) {
	s := newServer(t)
	path := "/api/v2/assign/courses/" + itoa(s.fixture.Course.ID) + "/restore"

	resp, _ := s.do(t, http.MethodPost, path, token(t, s.fixture.Students[0].ID, models.RoleStudent), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPluginAdminRequiresAdmin(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/v2/admin/plugins/assignfeedback", token(t, s.fixture.Teacher.ID, models.RoleTeacher), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := s.do(t, http.MethodGet, "/api/v2/admin/plugins/assignfeedback", token(t, 4242, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	var plugins []struct {
		Plugin string `json:"plugin"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plugins))
	require.Len(t, plugins, 2)
	require.Equal(t, "comments", plugins[0].Plugin)
	require.Equal(t, "file", plugins[1].Plugin)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
