package dto

import (
	"time"

	"github.com/noah-isme/gema-assign/internal/models"
)

// ActivityListRequest filters the event log of one assignment.
type ActivityListRequest struct {
	Page      int
	PageSize  int
	ActorID   uint
	EventType string
}

// ActivityResponse is one logged assignment event.
type ActivityResponse struct {
	ID            uint           `json:"id"`
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	AssignmentID  uint           `json:"assignment_id"`
	ActorID       uint           `json:"actor_id"`
	RelatedUserID uint           `json:"related_user_id,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	Metadata      map[string]any `json:"metadata"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ActivityListResponse wraps a page of logged events.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts a log entry.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := map[string]any(entry.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return ActivityResponse{
		ID:            entry.ID,
		EventID:       entry.EventID,
		EventType:     entry.EventType,
		AssignmentID:  entry.AssignmentID,
		ActorID:       entry.ActorID,
		RelatedUserID: entry.RelatedUserID,
		CorrelationID: entry.CorrelationID,
		Metadata:      metadata,
		CreatedAt:     entry.CreatedAt,
	}
}
