package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one persisted assignment event. Graders browse it as the
// assignment's audit trail.
type ActivityLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	EventID       string            `gorm:"size:36;uniqueIndex;not null" json:"event_id"`
	EventType     string            `gorm:"size:64;index;not null" json:"event_type"`
	AssignmentID  uint              `gorm:"index" json:"assignment_id"`
	ActorID       uint              `gorm:"index" json:"actor_id"`
	RelatedUserID uint              `json:"related_user_id"`
	CorrelationID string            `gorm:"size:64;index" json:"correlation_id,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt     time.Time         `json:"created_at"`
}
