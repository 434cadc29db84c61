package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/infra/config"
)

const schemaVersion = "1.0"

// Topic suffixes; the producer prepends the configured prefix.
const (
	topicIdentityRegistered = "identity.registered"
	topicIdentityDeleted    = "identity.deleted"
	topicGraphFollowed      = "graph.followed"
	topicGraphUnfollowed    = "graph.unfollowed"
)

// EventPublisher implements port.EventPublisher using Kafka. The post and
// comment services consume these topics to react to identity and graph
// changes.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID    string           `json:"event_id"`
	EventType  string           `json:"event_type"`
	IdentityID string           `json:"identity_id,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	Version    string           `json:"version"`
	Payload    any              `json:"payload"`
	Metadata   envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, identityID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:    id,
		EventType:  eventType,
		IdentityID: identityID,
		Timestamp:  ts.UTC(),
		Version:    schemaVersion,
		Payload:    payload,
		Metadata:   metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(identityID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishIdentityRegistered publishes identity.registered events.
func (p *EventPublisher) PublishIdentityRegistered(ctx context.Context, event domain.IdentityRegisteredEvent) error {
	payload := struct {
		IdentityID   string         `json:"identity_id"`
		Handle       string         `json:"handle"`
		Email        string         `json:"email"`
		Roles        []string       `json:"roles"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		IdentityID:   event.IdentityID,
		Handle:       event.Handle,
		Email:        event.Email,
		Roles:        event.Roles,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicIdentityRegistered, event.IdentityID, event.RegisteredAt, payload)
}

// PublishIdentityDeleted publishes identity.deleted events. Consumers use
// EdgesRemoved to reconcile local follow counts.
func (p *EventPublisher) PublishIdentityDeleted(ctx context.Context, event domain.IdentityDeletedEvent) error {
	payload := struct {
		IdentityID   string         `json:"identity_id"`
		Handle       string         `json:"handle"`
		EdgesRemoved int            `json:"edges_removed"`
		DeletedAt    time.Time      `json:"deleted_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		IdentityID:   event.IdentityID,
		Handle:       event.Handle,
		EdgesRemoved: event.EdgesRemoved,
		DeletedAt:    event.DeletedAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicIdentityDeleted, event.IdentityID, event.DeletedAt, payload)
}

// PublishFollowCreated publishes graph.followed events.
func (p *EventPublisher) PublishFollowCreated(ctx context.Context, event domain.FollowCreatedEvent) error {
	payload := struct {
		FollowerID string         `json:"follower_id"`
		FolloweeID string         `json:"followee_id"`
		CreatedAt  time.Time      `json:"created_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		FollowerID: event.FollowerID,
		FolloweeID: event.FolloweeID,
		CreatedAt:  event.CreatedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicGraphFollowed, event.FollowerID, event.CreatedAt, payload)
}

// PublishFollowRemoved publishes graph.unfollowed events.
func (p *EventPublisher) PublishFollowRemoved(ctx context.Context, event domain.FollowRemovedEvent) error {
	payload := struct {
		FollowerID string         `json:"follower_id"`
		FolloweeID string         `json:"followee_id"`
		RemovedAt  time.Time      `json:"removed_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		FollowerID: event.FollowerID,
		FolloweeID: event.FolloweeID,
		RemovedAt:  event.RemovedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, topicGraphUnfollowed, event.FollowerID, event.RemovedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
