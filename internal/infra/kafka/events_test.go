package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "social",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "tripshot-backend",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishFollowCreated(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	createdAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	event := domain.FollowCreatedEvent{
		EventID:    "event-123",
		FollowerID: "7f8b0d3e-6f6a-4f4d-9d1e-1a2b3c4d5e6f",
		FolloweeID: "0a1b2c3d-4e5f-6071-8293-a4b5c6d7e8f9",
		CreatedAt:  createdAt,
		Metadata:   map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishFollowCreated(context.Background(), event); err != nil {
		t.Fatalf("PublishFollowCreated returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "social.graph.followed" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			t.Fatalf("Key.Encode returned error: %v", err)
		}
		if string(key) != event.FollowerID {
			t.Fatalf("unexpected message key: %s", key)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "graph.followed" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["identity_id"]; got != event.FollowerID {
			t.Fatalf("unexpected identity_id: %v", got)
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}
		if timestamp != createdAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["follower_id"]; got != event.FollowerID {
			t.Fatalf("unexpected follower_id: %v", got)
		}
		if got := payload["followee_id"]; got != event.FolloweeID {
			t.Fatalf("unexpected followee_id: %v", got)
		}

		metadata, ok := payload["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("payload metadata not a map: %T", payload["metadata"])
		}
		if metadata["source"] != "unit-test" {
			t.Fatalf("metadata did not round-trip: %v", metadata)
		}

		envelopeMetadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}
		if envelopeMetadata["service"] != "tripshot-backend" {
			t.Fatalf("unexpected metadata service: %v", envelopeMetadata["service"])
		}
		if envelopeMetadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", envelopeMetadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishIdentityDeleted(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	deletedAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	event := domain.IdentityDeletedEvent{
		EventID:      "evt-001",
		IdentityID:   "7f8b0d3e-6f6a-4f4d-9d1e-1a2b3c4d5e6f",
		Handle:       "wanderer",
		EdgesRemoved: 7,
		DeletedAt:    deletedAt,
	}

	if err := publisher.PublishIdentityDeleted(context.Background(), event); err != nil {
		t.Fatalf("PublishIdentityDeleted returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "social.identity.deleted" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["handle"]; got != event.Handle {
			t.Fatalf("unexpected handle: %v", got)
		}

		edges, ok := payload["edges_removed"].(float64)
		if !ok {
			t.Fatalf("edges_removed not numeric: %T", payload["edges_removed"])
		}
		if int(edges) != event.EdgesRemoved {
			t.Fatalf("unexpected edges_removed: %v", edges)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestTopicName(t *testing.T) {
	producer := &Producer{cfg: config.KafkaSettings{TopicPrefix: "social"}}

	if got := producer.TopicName("identity.registered"); got != "social.identity.registered" {
		t.Fatalf("unexpected topic name: %s", got)
	}
	if got := producer.TopicName("social.identity.registered"); got != "social.identity.registered" {
		t.Fatalf("prefixed name should pass through, got %s", got)
	}

	bare := &Producer{cfg: config.KafkaSettings{}}
	if got := bare.TopicName("identity.registered"); got != "identity.registered" {
		t.Fatalf("unexpected topic name without prefix: %s", got)
	}
}
