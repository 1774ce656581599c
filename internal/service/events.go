package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assign/internal/observability"
)

// Event types published by the assignment services.
const (
	EventAssignmentCreated  = "assignment.created"
	EventAssignmentUpdated  = "assignment.updated"
	EventAssignmentDeleted  = "assignment.deleted"
	EventAssignmentRestored = "assignment.restored"
	EventSubmissionSaved    = "submission.saved"
	EventSubmissionSubmit   = "submission.submitted"
	EventGradeUpdated       = "grade.updated"
	EventFeedbackBatch      = "feedback.batch_uploaded"
	EventPluginChanged      = "plugin.changed"
)

// Event is a domain event fanned out to other services.
type Event struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Source       string         `json:"source"`
	AssignmentID uint           `json:"assignment_id,omitempty"`
	UserID       uint           `json:"user_id,omitempty"`
	ActorID      uint           `json:"actor_id,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
	// CorrelationID ties the event to the request that caused it.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// EventPublisher delivers domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

type eventPublisher struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	nodeID      string
	logger      zerolog.Logger
}

// NewEventPublisher publishes to a redis channel and a NATS subject derived from
// channelBase. Either transport may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventPublisher{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		nodeID:      uuid.NewString(),
		logger:      logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	event.Source = p.nodeID
	if event.CorrelationID == "" {
		event.CorrelationID = observability.CorrelationID(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}

	if p.redis != nil && p.redisStream != "" {
		if err := p.redis.Publish(ctx, p.redisStream, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to redis")
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject+"."+event.Type, payload); err != nil {
			p.logger.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event to nats")
		}
	}

	observability.EventsPublished().WithLabelValues(event.Type).Inc()
}

// NopPublisher discards events.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, Event) {}
