package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/backup"
	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/observability"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// BackupService exports assignments and restores them into courses.
type BackupService interface {
	Export(ctx context.Context, viewer Viewer, assignmentID uint, w io.Writer) error
	Restore(ctx context.Context, viewer Viewer, courseID uint, r io.Reader) (dto.RestoreResponse, error)
}

type backupService struct {
	store    *repository.Store
	exporter *backup.Exporter
	restorer *backup.Restorer
	events   EventPublisher
	logger   zerolog.Logger
}

// NewBackupService constructs a BackupService instance.
func NewBackupService(store *repository.Store, events EventPublisher, logger zerolog.Logger) BackupService {
	if events == nil {
		events = NopPublisher{}
	}
	return &backupService{
		store:    store,
		exporter: backup.NewExporter(store),
		restorer: backup.NewRestorer(store, logger),
		events:   events,
		logger:   logger.With().Str("component", "backup_service").Logger(),
	}
}

func (s *backupService) Export(ctx context.Context, viewer Viewer, assignmentID uint, w io.Writer) error {
	if !viewer.IsGrader() {
		return ErrForbidden
	}
	if _, err := loadAssignment(ctx, s.store, assignmentID); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		observability.BackupDuration().WithLabelValues("export").Observe(time.Since(start).Seconds())
	}()

	if err := s.exporter.Export(ctx, assignmentID, w); err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to export assignment")
		return err
	}
	return nil
}

func (s *backupService) Restore(ctx context.Context, viewer Viewer, courseID uint, r io.Reader) (dto.RestoreResponse, error) {
	if !viewer.IsGrader() {
		return dto.RestoreResponse{}, ErrForbidden
	}
	if _, err := s.store.Courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RestoreResponse{}, ErrCourseNotFound
		}
		return dto.RestoreResponse{}, err
	}

	start := time.Now()
	result, err := s.restorer.Restore(ctx, courseID, r)
	observability.BackupDuration().WithLabelValues("restore").Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("restore aborted")
		return dto.RestoreResponse{}, err
	}

	s.events.Publish(ctx, Event{
		Type:         EventAssignmentRestored,
		AssignmentID: result.AssignmentID,
		ActorID:      viewer.UserID,
		Data:         map[string]any{"course_id": courseID},
	})
	return dto.RestoreResponse{AssignmentID: result.AssignmentID, Mapped: result.Mapped}, nil
}
