package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/onlinetext"
	"github.com/noah-isme/gema-assign/internal/plugin/submissionfile"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// DefaultMaxSubmissionFiles applies when the file plugin has no maxfiles setting.
const DefaultMaxSubmissionFiles = 20

// SubmissionService orchestrates the student submission workflow.
type SubmissionService interface {
	Get(ctx context.Context, viewer Viewer, assignmentID, userID uint) (dto.SubmissionResponse, error)
	SaveOnlineText(ctx context.Context, viewer Viewer, assignmentID uint, payload dto.OnlineTextRequest) (dto.SubmissionResponse, error)
	UploadFiles(ctx context.Context, viewer Viewer, assignmentID uint, path string, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, viewer Viewer, assignmentID uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	store     *repository.Store
	registry  *plugin.Registry
	uploads   UploadService
	validator *validator.Validate
	events    EventPublisher
	cache     *SummaryCache
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(store *repository.Store, registry *plugin.Registry, uploads UploadService, validate *validator.Validate, events EventPublisher, cache *SummaryCache, logger zerolog.Logger) SubmissionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &submissionService{
		store:     store,
		registry:  registry,
		uploads:   uploads,
		validator: validate,
		events:    events,
		cache:     cache,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		now:       time.Now,
	}
}

func (s *submissionService) Get(ctx context.Context, viewer Viewer, assignmentID, userID uint) (dto.SubmissionResponse, error) {
	if !viewer.CanSee(userID) {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	submission, err := s.store.Submissions.GetByAssignmentAndUser(ctx, assignment.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return s.response(ctx, submission)
}

func (s *submissionService) SaveOnlineText(ctx context.Context, viewer Viewer, assignmentID uint, payload dto.OnlineTextRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}
	format := payload.Format
	if format == "" {
		format = models.TextFormatHTML
	}

	assignment, _, err := s.prepare(ctx, viewer, assignmentID, onlinetext.Type)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	var submission models.Submission
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		submission, err = s.editableSubmission(ctx, tx, assignment, viewer.UserID)
		if err != nil {
			return err
		}
		text := models.OnlineTextSubmission{
			AssignmentID: assignment.ID,
			SubmissionID: submission.ID,
			OnlineText:   payload.Text,
			OnlineFormat: format,
		}
		if err := tx.OnlineTexts.Save(ctx, &text); err != nil {
			return err
		}
		return s.touch(ctx, tx, assignment, &submission)
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.saved(ctx, assignment, submission, onlinetext.Type)
	return s.response(ctx, submission)
}

func (s *submissionService) UploadFiles(ctx context.Context, viewer Viewer, assignmentID uint, path string, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if len(files) == 0 {
		return dto.SubmissionResponse{}, errors.New("at least one file is required")
	}

	assignment, cfg, err := s.prepare(ctx, viewer, assignmentID, submissionfile.Type)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	var submission models.Submission
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		submission, err = s.editableSubmission(ctx, tx, assignment, viewer.UserID)
		return err
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	area := submissionfile.Area(assignment.ID, submission.ID)
	existing, err := s.store.Files.CountArea(ctx, area)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	added, err := s.newEntries(ctx, area, path, files)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if limit := cfg.IntSetting("maxfiles", DefaultMaxSubmissionFiles); int(existing)+added > limit {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: at most %d files", ErrTooManyFiles, limit)
	}

	maxBytes := int64(cfg.IntSetting("maxbytes", 0))
	if maxBytes <= 0 {
		maxBytes = assignment.Course.MaxBytes
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		for _, header := range files {
			if _, err := s.uploads.Store(ctx, tx.Files, header, UploadTarget{
				Area:     area,
				UserID:   viewer.UserID,
				FilePath: path,
				MaxBytes: maxBytes,
			}); err != nil {
				return err
			}
		}
		return s.touch(ctx, tx, assignment, &submission)
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.saved(ctx, assignment, submission, submissionfile.Type)
	return s.response(ctx, submission)
}

func (s *submissionService) Submit(ctx context.Context, viewer Viewer, assignmentID uint) (dto.SubmissionResponse, error) {
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if err := s.checkParticipant(ctx, assignment, viewer); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.store.Submissions.GetByAssignmentAndUser(ctx, assignment.ID, viewer.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if submission.IsSubmitted() {
		return s.response(ctx, submission)
	}
	if locked, err := s.gradeLocked(ctx, s.store, assignment.ID, viewer.UserID); err != nil {
		return dto.SubmissionResponse{}, err
	} else if locked {
		return dto.SubmissionResponse{}, ErrSubmissionLocked
	}

	submission.Status = models.SubmissionStatusSubmitted
	if err := s.store.Submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, assignment.ID)
	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("user_id", viewer.UserID).Msg("submission submitted for grading")
	s.events.Publish(ctx, Event{Type: EventSubmissionSubmit, AssignmentID: assignment.ID, UserID: viewer.UserID, ActorID: viewer.UserID})

	return s.response(ctx, submission)
}

// prepare checks that the viewer may submit through the plugin right now.
func (s *submissionService) prepare(ctx context.Context, viewer Viewer, assignmentID uint, pluginType string) (models.Assignment, models.AssignmentPluginConfig, error) {
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return models.Assignment{}, models.AssignmentPluginConfig{}, err
	}
	if err := s.checkParticipant(ctx, assignment, viewer); err != nil {
		return models.Assignment{}, models.AssignmentPluginConfig{}, err
	}
	if !assignment.SubmissionsOpen(s.now()) {
		return models.Assignment{}, models.AssignmentPluginConfig{}, ErrSubmissionsClosed
	}

	p, err := s.registry.SubmissionPlugin(ctx, assignment, pluginType)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return models.Assignment{}, models.AssignmentPluginConfig{}, ErrPluginDisabled
		}
		return models.Assignment{}, models.AssignmentPluginConfig{}, err
	}
	if !p.IsEnabled() {
		return models.Assignment{}, models.AssignmentPluginConfig{}, ErrPluginDisabled
	}

	cfg, err := s.store.PluginConfigs.Get(ctx, assignment.ID, models.PluginSubtypeSubmission, pluginType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Assignment{}, models.AssignmentPluginConfig{}, err
	}

	course, err := s.store.Courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return models.Assignment{}, models.AssignmentPluginConfig{}, err
	}
	assignment.Course = course

	return assignment, cfg, nil
}

func (s *submissionService) checkParticipant(ctx context.Context, assignment models.Assignment, viewer Viewer) error {
	enrolled, err := s.store.Users.IsEnrolled(ctx, assignment.CourseID, viewer.UserID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	return nil
}

// editableSubmission returns the user's submission, creating it on first save.
func (s *submissionService) editableSubmission(ctx context.Context, tx *repository.Store, assignment models.Assignment, userID uint) (models.Submission, error) {
	if locked, err := s.gradeLocked(ctx, tx, assignment.ID, userID); err != nil {
		return models.Submission{}, err
	} else if locked {
		return models.Submission{}, ErrSubmissionLocked
	}

	submission, err := tx.Submissions.GetByAssignmentAndUser(ctx, assignment.ID, userID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		submission = models.Submission{AssignmentID: assignment.ID, UserID: userID, Status: initialStatus(assignment)}
		if err := tx.Submissions.Create(ctx, &submission); err != nil {
			return models.Submission{}, err
		}
		return submission, nil
	case err != nil:
		return models.Submission{}, err
	}

	if submission.IsSubmitted() && assignment.SubmissionDrafts {
		return models.Submission{}, ErrSubmissionLocked
	}
	return submission, nil
}

func initialStatus(assignment models.Assignment) string {
	if assignment.SubmissionDrafts {
		return models.SubmissionStatusDraft
	}
	return models.SubmissionStatusSubmitted
}

func (s *submissionService) gradeLocked(ctx context.Context, store *repository.Store, assignmentID, userID uint) (bool, error) {
	grade, err := store.Grades.GetByAssignmentAndUser(ctx, assignmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return grade.Locked, nil
}

// touch records the modification time of the submission.
func (s *submissionService) touch(ctx context.Context, store *repository.Store, assignment models.Assignment, submission *models.Submission) error {
	if submission.Status == "" {
		submission.Status = initialStatus(assignment)
	}
	submission.UpdatedAt = s.now()
	return store.Submissions.Update(ctx, submission)
}

func (s *submissionService) saved(ctx context.Context, assignment models.Assignment, submission models.Submission, pluginType string) {
	s.cache.Invalidate(ctx, assignment.ID)
	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("submission_id", submission.ID).
		Str("plugin", pluginType).
		Msg("submission saved")
	s.events.Publish(ctx, Event{
		Type:         EventSubmissionSaved,
		AssignmentID: assignment.ID,
		UserID:       submission.UserID,
		ActorID:      submission.UserID,
		Data:         map[string]any{"plugin": pluginType, "status": submission.Status},
	})
}

func (s *submissionService) response(ctx context.Context, submission models.Submission) (dto.SubmissionResponse, error) {
	var text *models.OnlineTextSubmission
	stored, err := s.store.OnlineTexts.GetBySubmission(ctx, submission.ID)
	switch {
	case err == nil:
		text = &stored
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.SubmissionResponse{}, err
	}

	files, err := s.store.Files.ListArea(ctx, submissionfile.Area(submission.AssignmentID, submission.ID))
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission, text, files), nil
}

func loadAssignment(ctx context.Context, store *repository.Store, id uint) (models.Assignment, error) {
	assignment, err := store.Assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

// newEntries counts the uploads that add a file to area rather than replace one.
func (s *submissionService) newEntries(ctx context.Context, area repository.FileArea, dir string, files []*multipart.FileHeader) (int, error) {
	seen := make(map[string]struct{}, len(files))
	added := 0
	for _, header := range files {
		name := cleanDisplayName(header.Filename)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		exists, err := s.store.Files.Exists(ctx, area, dir, name)
		if err != nil {
			return 0, err
		}
		if !exists {
			added++
		}
	}
	return added, nil
}
