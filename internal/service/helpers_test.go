package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/builtin"
	"github.com/noah-isme/gema-assign/internal/render"
	"github.com/noah-isme/gema-assign/internal/repository"
	"github.com/noah-isme/gema-assign/internal/testsupport"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type storageStub struct {
	mu    sync.Mutex
	names []string
}

func (s *storageStub) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	return "https://cdn.example.com/" + name, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// testEnv wires every service over one sqlite database and a miniredis server.
type testEnv struct {
	db       *gorm.DB
	store    *repository.Store
	registry *plugin.Registry
	fixture  testsupport.Fixture
	strings  *lang.Strings
	composer *render.Composer
	validate *validator.Validate
	events   *recordingPublisher
	storage  *storageStub
	uploads  UploadService
	cache    *SummaryCache
	redis    *miniredis.Miniredis
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testsupport.NewDB(t)
	store := repository.NewStore(db)
	now := time.Now()
	fixture := testsupport.Seed(t, db, now)
	strings := lang.MustNew()

	registry := plugin.NewRegistry(store.Plugins, store.PluginConfigs, builtin.Catalog(store, strings, builtin.Options{}), testLogger())
	_, err := registry.Install(context.Background())
	require.NoError(t, err)

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := &storageStub{}
	return &testEnv{
		db:       db,
		store:    store,
		registry: registry,
		fixture:  fixture,
		strings:  strings,
		composer: render.NewComposer(strings, render.Options{Links: render.Links{Base: "/api/v2/assign"}, Files: store.Files}),
		validate: validator.New(),
		events:   &recordingPublisher{},
		storage:  storage,
		uploads:  NewUploadService(storage, 5, testLogger()),
		cache:    NewSummaryCache(client, time.Minute, testLogger()),
		redis:    server,
		now:      now,
	}
}

func (e *testEnv) enable(t *testing.T, subtype string, plugins ...string) {
	t.Helper()
	testsupport.EnablePlugins(t, e.db, e.fixture.Assignment.ID, subtype, plugins...)
}

func (e *testEnv) student(i int) Viewer {
	return Viewer{UserID: e.fixture.Students[i].ID, Role: models.RoleStudent}
}

func (e *testEnv) teacher() Viewer {
	return Viewer{UserID: e.fixture.Teacher.ID, Role: models.RoleTeacher}
}

func (e *testEnv) submissions() *submissionService {
	svc := NewSubmissionService(e.store, e.registry, e.uploads, e.validate, e.events, e.cache, testLogger()).(*submissionService)
	svc.now = func() time.Time { return e.now }
	return svc
}

func (e *testEnv) grading() GradingService {
	return NewGradingService(e.store, e.registry, e.composer, e.validate, e.events, testLogger())
}

func (e *testEnv) views() *viewService {
	svc := NewViewService(e.store, e.registry, e.composer.WithClock(func() time.Time { return e.now }), e.strings, e.cache, testLogger()).(*viewService)
	svc.now = func() time.Time { return e.now }
	return svc
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func buildFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {"form-data; name=\"file\"; filename=\"" + filename + "\""},
		"Content-Type":        {"application/octet-stream"},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content) + 1024))
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
