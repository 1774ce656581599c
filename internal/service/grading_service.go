package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/plugin/comments"
	"github.com/noah-isme/gema-assign/internal/render"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// GradingService lets graders record grades and feedback comments.
type GradingService interface {
	Grade(ctx context.Context, grader Viewer, assignmentID, userID uint, payload dto.GradeRequest) (dto.GradeResponse, error)
	List(ctx context.Context, grader Viewer, assignmentID uint) ([]dto.GradeResponse, error)
}

type gradingService struct {
	store     *repository.Store
	registry  *plugin.Registry
	composer  *render.Composer
	validator *validator.Validate
	events    EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGradingService constructs a GradingService instance.
func NewGradingService(store *repository.Store, registry *plugin.Registry, composer *render.Composer, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) GradingService {
	if events == nil {
		events = NopPublisher{}
	}
	return &gradingService{
		store:     store,
		registry:  registry,
		composer:  composer,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "grading_service").Logger(),
		now:       time.Now,
	}
}

func (s *gradingService) Grade(ctx context.Context, grader Viewer, assignmentID, userID uint, payload dto.GradeRequest) (dto.GradeResponse, error) {
	if !grader.IsGrader() {
		return dto.GradeResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradeResponse{}, err
	}

	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return dto.GradeResponse{}, err
	}
	enrolled, err := s.store.Users.IsEnrolled(ctx, assignment.CourseID, userID)
	if err != nil {
		return dto.GradeResponse{}, err
	}
	if !enrolled {
		return dto.GradeResponse{}, ErrNotEnrolled
	}

	scale, err := s.scaleFor(ctx, assignment)
	if err != nil {
		return dto.GradeResponse{}, err
	}
	if payload.Grade != nil {
		if err := validateGrade(*payload.Grade, assignment, scale); err != nil {
			return dto.GradeResponse{}, err
		}
	}

	if payload.Comment != nil {
		p, err := s.registry.FeedbackPlugin(ctx, assignment, comments.Type)
		if err != nil || !p.IsEnabled() {
			return dto.GradeResponse{}, ErrPluginDisabled
		}
	}

	var (
		grade   models.Grade
		comment string
	)
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		grade, err = ensureGrade(ctx, tx, assignment.ID, userID)
		if err != nil {
			return err
		}

		now := s.now()
		if payload.Grade != nil {
			value := *payload.Grade
			grade.Grade = &value
			grade.GradedAt = &now
			graderID := grader.UserID
			grade.GraderID = &graderID
		}
		if payload.Hidden != nil {
			grade.Hidden = *payload.Hidden
		}
		if payload.Locked != nil {
			grade.Locked = *payload.Locked
		}
		if err := tx.Grades.Update(ctx, &grade); err != nil {
			return err
		}

		if payload.Comment != nil {
			format := payload.CommentFormat
			if format == "" {
				format = models.TextFormatHTML
			}
			record := models.FeedbackComment{
				AssignmentID:  assignment.ID,
				GradeID:       grade.ID,
				CommentText:   *payload.Comment,
				CommentFormat: format,
			}
			if err := tx.FeedbackComments.Save(ctx, &record); err != nil {
				return err
			}
			comment = record.CommentText
		} else if stored, err := tx.FeedbackComments.GetByGrade(ctx, grade.ID); err == nil {
			comment = stored.CommentText
		}
		return nil
	})
	if err != nil {
		return dto.GradeResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("user_id", userID).
		Uint("grader_id", grader.UserID).
		Msg("grade updated")
	s.events.Publish(ctx, Event{
		Type:         EventGradeUpdated,
		AssignmentID: assignment.ID,
		UserID:       userID,
		ActorID:      grader.UserID,
		Data:         map[string]any{"locked": grade.Locked, "hidden": grade.Hidden},
	})

	return dto.NewGradeResponse(grade, s.composer.FormatGrade(grade.Grade, assignment, scale), comment), nil
}

func (s *gradingService) List(ctx context.Context, grader Viewer, assignmentID uint) ([]dto.GradeResponse, error) {
	if !grader.IsGrader() {
		return nil, ErrForbidden
	}
	assignment, err := loadAssignment(ctx, s.store, assignmentID)
	if err != nil {
		return nil, err
	}
	scale, err := s.scaleFor(ctx, assignment)
	if err != nil {
		return nil, err
	}

	grades, err := s.store.Grades.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	feedback, err := s.store.FeedbackComments.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}
	byGrade := make(map[uint]string, len(feedback))
	for _, c := range feedback {
		byGrade[c.GradeID] = c.CommentText
	}

	out := make([]dto.GradeResponse, 0, len(grades))
	for _, grade := range grades {
		out = append(out, dto.NewGradeResponse(grade, s.composer.FormatGrade(grade.Grade, assignment, scale), byGrade[grade.ID]))
	}
	return out, nil
}

func (s *gradingService) scaleFor(ctx context.Context, assignment models.Assignment) (*models.Scale, error) {
	return loadScale(ctx, s.store, assignment)
}

func loadScale(ctx context.Context, store *repository.Store, assignment models.Assignment) (*models.Scale, error) {
	if !assignment.UsesScale() {
		return nil, nil
	}
	scale, err := store.Courses.GetScale(ctx, assignment.ScaleID())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scale, nil
}

// validateGrade accepts -1 (ungraded), 0..max for numeric grades, or a scale item key.
func validateGrade(value float64, assignment models.Assignment, scale *models.Scale) error {
	if value == -1 {
		return nil
	}
	if !assignment.UsesScale() {
		if value < 0 || value > float64(assignment.Grade) {
			return fmt.Errorf("%w: must be between 0 and %d", ErrInvalidGrade, assignment.Grade)
		}
		return nil
	}
	if scale == nil || value != math.Trunc(value) {
		return ErrInvalidGrade
	}
	if _, ok := scale.Options()[int(value)]; !ok {
		return fmt.Errorf("%w: not an item of scale %q", ErrInvalidGrade, scale.Name)
	}
	return nil
}

// ensureGrade returns the grade row of the user, creating an empty one when missing.
func ensureGrade(ctx context.Context, tx *repository.Store, assignmentID, userID uint) (models.Grade, error) {
	grade, err := tx.Grades.GetByAssignmentAndUser(ctx, assignmentID, userID)
	if err == nil {
		return grade, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Grade{}, err
	}
	grade = models.Grade{AssignmentID: assignmentID, UserID: userID}
	if err := tx.Grades.Create(ctx, &grade); err != nil {
		return models.Grade{}, err
	}
	return grade, nil
}
