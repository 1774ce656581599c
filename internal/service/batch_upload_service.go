package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/lang"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/feedbackfile"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// Hidden values of the batch feedback upload form.
const (
	BatchOperation     = "plugingradingbatchoperation_file_uploadfiles"
	BatchAction        = "viewpluginpage"
	BatchPluginAction  = "uploadfiles"
	BatchPlugin        = feedbackfile.Type
	BatchPluginSubtype = models.PluginSubtypeFeedback
)

// BatchUploadService drives the batch feedback file upload form: describe the
// form, stage files, then copy the staged files to every selected user.
type BatchUploadService interface {
	Prepare(ctx context.Context, grader Viewer, assignmentID uint, payload dto.BatchUploadPrepareRequest) (dto.BatchUploadFormResponse, error)
	Stage(ctx context.Context, grader Viewer, assignmentID uint, path string, files []*multipart.FileHeader) ([]dto.StoredFileResponse, error)
	Submit(ctx context.Context, grader Viewer, bundle dto.BatchUploadBundle) (dto.BatchUploadResult, error)
}

type batchUploadService struct {
	store     *repository.Store
	registry  *plugin.Registry
	uploads   UploadService
	strings   *lang.Strings
	validator *validator.Validate
	events    EventPublisher
	logger    zerolog.Logger
}

// NewBatchUploadService constructs a BatchUploadService instance.
func NewBatchUploadService(store *repository.Store, registry *plugin.Registry, uploads UploadService, strings *lang.Strings, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) BatchUploadService {
	if events == nil {
		events = NopPublisher{}
	}
	return &batchUploadService{
		store:     store,
		registry:  registry,
		uploads:   uploads,
		strings:   strings,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "batch_upload_service").Logger(),
	}
}

func (s *batchUploadService) Prepare(ctx context.Context, grader Viewer, assignmentID uint, payload dto.BatchUploadPrepareRequest) (dto.BatchUploadFormResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.BatchUploadFormResponse{}, err
	}
	assignment, err := s.begin(ctx, grader, assignmentID)
	if err != nil {
		return dto.BatchUploadFormResponse{}, err
	}

	userIDs := uniqueIDs(payload.UserIDs)
	users, err := s.selectedUsers(ctx, s.store, assignment, userIDs)
	if err != nil {
		return dto.BatchUploadFormResponse{}, err
	}
	course, err := s.store.Courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return dto.BatchUploadFormResponse{}, err
	}

	staging := feedbackfile.BatchArea(assignment.ID, grader.UserID)
	staged, err := s.store.Files.ListArea(ctx, staging)
	if err != nil {
		return dto.BatchUploadFormResponse{}, err
	}

	selected := make([]dto.SelectedUser, 0, len(users))
	for _, u := range users {
		selected = append(selected, dto.SelectedUser{ID: u.ID, FullName: u.FullName()})
	}

	return dto.BatchUploadFormResponse{
		Header:        s.strings.Get("assign:batchuploadfilesforusers", strconv.Itoa(len(users))),
		SelectedLabel: s.strings.Component(models.ComponentFeedbackFile, "selectedusers"),
		SelectedUsers: selected,
		Files: dto.FileOptions{
			Subdirs:        true,
			MaxBytes:       course.MaxBytes,
			MaxFiles:       -1,
			AcceptedTypes:  []string{"*"},
			ReturnTypes:    "internal",
			StagingArea:    staging.FileArea,
			StagingItemID:  staging.ItemID,
			StagingContext: staging.ContextID,
		},
		Hidden: dto.BatchUploadBundle{
			ID:            assignment.ID,
			Operation:     BatchOperation,
			Action:        BatchAction,
			PluginAction:  BatchPluginAction,
			Plugin:        BatchPlugin,
			PluginSubtype: BatchPluginSubtype,
			SelectedUsers: joinIDs(userIDs),
		},
		Staged: dto.NewStoredFileResponseSlice(staged),
	}, nil
}

func (s *batchUploadService) Stage(ctx context.Context, grader Viewer, assignmentID uint, path string, files []*multipart.FileHeader) ([]dto.StoredFileResponse, error) {
	if len(files) == 0 {
		return nil, errors.New("at least one file is required")
	}
	assignment, err := s.begin(ctx, grader, assignmentID)
	if err != nil {
		return nil, err
	}
	course, err := s.store.Courses.GetByID(ctx, assignment.CourseID)
	if err != nil {
		return nil, err
	}

	staging := feedbackfile.BatchArea(assignment.ID, grader.UserID)
	for _, header := range files {
		if _, err := s.uploads.Store(ctx, s.store.Files, header, UploadTarget{
			Area:     staging,
			UserID:   grader.UserID,
			FilePath: path,
			MaxBytes: course.MaxBytes,
		}); err != nil {
			return nil, err
		}
	}

	staged, err := s.store.Files.ListArea(ctx, staging)
	if err != nil {
		return nil, err
	}
	return dto.NewStoredFileResponseSlice(staged), nil
}

func (s *batchUploadService) Submit(ctx context.Context, grader Viewer, bundle dto.BatchUploadBundle) (dto.BatchUploadResult, error) {
	if err := s.validator.Struct(bundle); err != nil {
		return dto.BatchUploadResult{}, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	userIDs, err := parseIDs(bundle.SelectedUsers)
	if err != nil {
		return dto.BatchUploadResult{}, err
	}

	assignment, err := s.begin(ctx, grader, bundle.ID)
	if err != nil {
		return dto.BatchUploadResult{}, err
	}

	staging := feedbackfile.BatchArea(assignment.ID, grader.UserID)
	staged, err := s.store.Files.ListArea(ctx, staging)
	if err != nil {
		return dto.BatchUploadResult{}, err
	}
	if len(staged) == 0 {
		return dto.BatchUploadResult{}, ErrNothingStaged
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		users, err := s.selectedUsers(ctx, tx, assignment, userIDs)
		if err != nil {
			return err
		}
		for _, user := range users {
			grade, err := ensureGrade(ctx, tx, assignment.ID, user.ID)
			if err != nil {
				return err
			}
			area := feedbackfile.Area(assignment.ID, grade.ID)
			if err := tx.Files.DeleteArea(ctx, area); err != nil {
				return err
			}
			for _, file := range staged {
				copied := file
				copied.ID = 0
				copied.ContextID = area.ContextID
				copied.Component = area.Component
				copied.FileArea = area.FileArea
				copied.ItemID = area.ItemID
				copied.UserID = user.ID
				if err := tx.Files.Create(ctx, &copied); err != nil {
					return err
				}
			}
		}
		return tx.Files.DeleteArea(ctx, staging)
	})
	if err != nil {
		return dto.BatchUploadResult{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("grader_id", grader.UserID).
		Int("users", len(userIDs)).
		Int("files", len(staged)).
		Msg("batch feedback files uploaded")
	s.events.Publish(ctx, Event{
		Type:         EventFeedbackBatch,
		AssignmentID: assignment.ID,
		ActorID:      grader.UserID,
		Data:         map[string]any{"users": userIDs, "files": len(staged)},
	})

	return dto.BatchUploadResult{AssignmentID: assignment.ID, Users: userIDs, FilesPerUser: len(staged)}, nil
}

// begin loads the assignment and checks the grader may use the feedback file plugin.
func (s *batchUploadService) begin(ctx context.Context, grader Viewer, assignmentID uint) (models.Assignment, error) {
	if !grader.IsGrader() {
		return models.Assignment{}, ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return models.Assignment{}, err
	}
	p, err := s.registry.FeedbackPlugin(ctx, assignment, feedbackfile.Type)
	if err != nil || !p.IsEnabled() {
		return models.Assignment{}, ErrPluginDisabled
	}
	return assignment, nil
}

// selectedUsers loads the users in the requested order; every one must be enrolled.
func (s *batchUploadService) selectedUsers(ctx context.Context, store *repository.Store, assignment models.Assignment, ids []uint) ([]models.User, error) {
	users, err := store.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		user, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
		}
		enrolled, err := store.Users.IsEnrolled(ctx, assignment.CourseID, id)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, fmt.Errorf("%w: %d", ErrNotEnrolled, id)
		}
		out = append(out, user)
	}
	return out, nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

// uniqueIDs drops repeated ids, keeping first occurrence order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseIDs(raw string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: bad user id %q", ErrInvalidBundle, part)
		}
		ids = append(ids, uint(id))
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no users selected", ErrInvalidBundle)
	}
	return ids, nil
}
