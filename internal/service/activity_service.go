package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assign/internal/dto"
	"github.com/noah-isme/gema-assign/internal/models"
	"github.com/noah-isme/gema-assign/internal/observability"
	"github.com/noah-isme/gema-assign/internal/repository"
)

// ActivityRecorder persists every event to the activity log before handing it
// to the next publisher. A failed write is logged and does not stop delivery.
type ActivityRecorder struct {
	repo   repository.ActivityLogRepository
	next   EventPublisher
	logger zerolog.Logger
}

// NewActivityRecorder wraps next with the activity log.
func NewActivityRecorder(repo repository.ActivityLogRepository, next EventPublisher, logger zerolog.Logger) *ActivityRecorder {
	if next == nil {
		next = NopPublisher{}
	}
	return &ActivityRecorder{
		repo:   repo,
		next:   next,
		logger: logger.With().Str("component", "activity_recorder").Logger(),
	}
}

// Publish implements EventPublisher.
func (r *ActivityRecorder) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.CorrelationID == "" {
		event.CorrelationID = observability.CorrelationID(ctx)
	}

	entry := models.ActivityLog{
		EventID:       event.ID,
		EventType:     event.Type,
		AssignmentID:  event.AssignmentID,
		ActorID:       event.ActorID,
		RelatedUserID: event.UserID,
		CorrelationID: event.CorrelationID,
		Metadata:      sanitizeMetadata(event.Data),
		CreatedAt:     event.OccurredAt,
	}
	if err := r.repo.Create(ctx, &entry); err != nil {
		r.logger.Error().Err(err).Str("type", event.Type).Msg("failed to persist activity log")
	}

	r.next.Publish(ctx, event)
}

// ActivityService lists the event log of an assignment.
type ActivityService interface {
	List(ctx context.Context, viewer Viewer, assignmentID uint, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	store  *repository.Store
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(store *repository.Store, logger zerolog.Logger) ActivityService {
	return &activityService{
		store:  store,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) List(ctx context.Context, viewer Viewer, assignmentID uint, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	if !viewer.IsGrader() {
		return dto.ActivityListResponse{}, ErrForbidden
	}
	if _, err := s.store.Assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityListResponse{}, ErrAssignmentNotFound
		}
		return dto.ActivityListResponse{}, err
	}

	filter := repository.ActivityLogFilter{
		Page:         req.Page,
		PageSize:     req.PageSize,
		AssignmentID: assignmentID,
		EventType:    strings.TrimSpace(req.EventType),
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}

	entries, total, err := s.store.Activity.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("failed to list activity logs")
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.ActivityListResponse{Items: responses, Pagination: pagination}, nil
}

// sanitizeMetadata masks values under keys that look like contact details or credentials.
func sanitizeMetadata(metadata map[string]any) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range metadata {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "email") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
