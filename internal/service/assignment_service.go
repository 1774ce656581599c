package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/plugin"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// defaultPlugins are enabled on new assignments that do not configure plugins.
var defaultPlugins = map[string]map[string]bool{
	models.PluginSubtypeSubmission: {"file": true},
	models.PluginSubtypeFeedback:   {"comments": true},
}

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Viewer, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Viewer, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Viewer, id uint) error
}

type assignmentService struct {
	store     *repository.Store
	registry  *plugin.Registry
	validator *validator.Validate
	events    EventPublisher
	logger    zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(store *repository.Store, registry *plugin.Registry, validate *validator.Validate, events EventPublisher, logger zerolog.Logger) AssignmentService {
	if events == nil {
		events = NopPublisher{}
	}
	return &assignmentService{
		store:     store,
		registry:  registry,
		validator: validate,
		events:    events,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) List(ctx context.Context, query dto.AssignmentListQuery) (dto.AssignmentListResponse, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	assignments, total, err := s.store.Assignments.List(ctx, repository.AssignmentFilter{
		CourseID: query.CourseID,
		Search:   query.Search,
		Sort:     query.Sort,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Items: dto.NewAssignmentResponseSlice(assignments),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.load(ctx, s.store, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	configs, err := s.store.PluginConfigs.ListByAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, configs), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Viewer, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsGrader() {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	allowFrom, err := dto.ParseTimestamp(payload.AllowSubmissionsFrom)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid allow submissions from date: %w", err)
	}
	dueDate, err := dto.ParseTimestamp(payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid due date: %w", err)
	}
	if allowFrom != nil && dueDate != nil && dueDate.Before(*allowFrom) {
		return dto.AssignmentResponse{}, fmt.Errorf("due date must be after the submission start date")
	}

	assignment := models.Assignment{
		CourseID:              payload.CourseID,
		Name:                  payload.Name,
		Intro:                 payload.Intro,
		AlwaysShowDescription: true,
		AllowSubmissionsFrom:  allowFrom,
		DueDate:               dueDate,
		Grade:                 100,
		SubmissionDrafts:      payload.SubmissionDrafts,
	}
	if payload.AlwaysShowDescription != nil {
		assignment.AlwaysShowDescription = *payload.AlwaysShowDescription
	}
	if payload.Grade != nil {
		assignment.Grade = *payload.Grade
	}

	settings := payload.Plugins
	if len(settings) == 0 {
		settings = s.defaultSettings(ctx)
	}

	if err := s.validatePlugins(ctx, settings); err != nil {
		return dto.AssignmentResponse{}, err
	}

	var configs []models.AssignmentPluginConfig
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Courses.GetByID(ctx, payload.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}
		if err := s.checkScale(ctx, tx, assignment); err != nil {
			return err
		}
		if err := tx.Assignments.Create(ctx, &assignment); err != nil {
			return err
		}
		configs, err = s.applyPlugins(ctx, tx, assignment.ID, settings)
		return err
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", assignment.CourseID).Msg("assignment created")
	s.events.Publish(ctx, Event{Type: EventAssignmentCreated, AssignmentID: assignment.ID, ActorID: actor.UserID})

	return dto.NewAssignmentResponse(assignment, configs), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Viewer, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsGrader() {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.validatePlugins(ctx, payload.Plugins); err != nil {
		return dto.AssignmentResponse{}, err
	}

	var (
		assignment models.Assignment
		configs    []models.AssignmentPluginConfig
	)
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		assignment, err = s.load(ctx, tx, id)
		if err != nil {
			return err
		}

		if payload.Name != nil {
			assignment.Name = *payload.Name
		}
		if payload.Intro != nil {
			assignment.Intro = *payload.Intro
		}
		if payload.AlwaysShowDescription != nil {
			assignment.AlwaysShowDescription = *payload.AlwaysShowDescription
		}
		if payload.AllowSubmissionsFrom != nil {
			if assignment.AllowSubmissionsFrom, err = dto.ParseTimestamp(*payload.AllowSubmissionsFrom); err != nil {
				return fmt.Errorf("invalid allow submissions from date: %w", err)
			}
		}
		if payload.DueDate != nil {
			if assignment.DueDate, err = dto.ParseTimestamp(*payload.DueDate); err != nil {
				return fmt.Errorf("invalid due date: %w", err)
			}
		}
		if payload.Grade != nil {
			assignment.Grade = *payload.Grade
		}
		if payload.SubmissionDrafts != nil {
			assignment.SubmissionDrafts = *payload.SubmissionDrafts
		}

		if err := s.checkScale(ctx, tx, assignment); err != nil {
			return err
		}
		if err := tx.Assignments.Update(ctx, &assignment); err != nil {
			return err
		}

		if _, err := s.applyPlugins(ctx, tx, assignment.ID, payload.Plugins); err != nil {
			return err
		}
		configs, err = tx.PluginConfigs.ListByAssignment(ctx, assignment.ID)
		return err
	})
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")
	s.events.Publish(ctx, Event{Type: EventAssignmentUpdated, AssignmentID: assignment.ID, ActorID: actor.UserID})

	return dto.NewAssignmentResponse(assignment, configs), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Viewer, id uint) error {
	if !actor.IsGrader() {
		return ErrForbidden
	}
	if err := s.store.Assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	s.events.Publish(ctx, Event{Type: EventAssignmentDeleted, AssignmentID: id, ActorID: actor.UserID})
	return nil
}

func (s *assignmentService) load(ctx context.Context, store *repository.Store, id uint) (models.Assignment, error) {
	assignment, err := store.Assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) checkScale(ctx context.Context, store *repository.Store, assignment models.Assignment) error {
	if !assignment.UsesScale() {
		return nil
	}
	if _, err := store.Courses.GetScale(ctx, assignment.ScaleID()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("scale %d: %w", assignment.ScaleID(), ErrInvalidGrade)
		}
		return err
	}
	return nil
}

func (s *assignmentService) defaultSettings(ctx context.Context) []dto.PluginSettingRequest {
	var settings []dto.PluginSettingRequest
	for _, subtype := range plugin.Subtypes() {
		installed, err := s.registry.List(ctx, subtype)
		if err != nil {
			s.logger.Warn().Err(err).Str("subtype", subtype).Msg("failed to list plugins for defaults")
			continue
		}
		for _, d := range installed {
			settings = append(settings, dto.PluginSettingRequest{
				Subtype: subtype,
				Plugin:  d.Plugin,
				Enabled: defaultPlugins[subtype][d.Plugin],
			})
		}
	}
	return settings
}

// validatePlugins rejects settings for plugins that are not installed.
func (s *assignmentService) validatePlugins(ctx context.Context, settings []dto.PluginSettingRequest) error {
	for _, setting := range settings {
		if _, err := s.registry.IsEnabled(ctx, setting.Subtype, setting.Plugin); err != nil {
			return fmt.Errorf("%s_%s: %w", setting.Subtype, setting.Plugin, err)
		}
	}
	return nil
}

func (s *assignmentService) applyPlugins(ctx context.Context, store *repository.Store, assignmentID uint, settings []dto.PluginSettingRequest) ([]models.AssignmentPluginConfig, error) {
	configs := make([]models.AssignmentPluginConfig, 0, len(settings))
	for _, setting := range settings {
		cfg := models.AssignmentPluginConfig{
			AssignmentID: assignmentID,
			Subtype:      setting.Subtype,
			Plugin:       setting.Plugin,
			Enabled:      setting.Enabled,
			Settings:     setting.Settings,
		}
		if err := store.PluginConfigs.Upsert(ctx, &cfg); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
