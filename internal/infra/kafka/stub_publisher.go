package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
)

// StubPublisher logs events instead of publishing them. Used when Kafka is
// unavailable or disabled so the write path stays functional.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a logging-only publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (s *StubPublisher) PublishIdentityRegistered(_ context.Context, event domain.IdentityRegisteredEvent) error {
	s.logger.Debug("stub publisher: identity registered",
		zap.String("identity_id", event.IdentityID),
		zap.String("handle", event.Handle),
	)
	return nil
}

func (s *StubPublisher) PublishIdentityDeleted(_ context.Context, event domain.IdentityDeletedEvent) error {
	s.logger.Debug("stub publisher: identity deleted",
		zap.String("identity_id", event.IdentityID),
		zap.Int("edges_removed", event.EdgesRemoved),
	)
	return nil
}

func (s *StubPublisher) PublishFollowCreated(_ context.Context, event domain.FollowCreatedEvent) error {
	s.logger.Debug("stub publisher: follow created",
		zap.String("follower_id", event.FollowerID),
		zap.String("followee_id", event.FolloweeID),
	)
	return nil
}

func (s *StubPublisher) PublishFollowRemoved(_ context.Context, event domain.FollowRemovedEvent) error {
	s.logger.Debug("stub publisher: follow removed",
		zap.String("follower_id", event.FollowerID),
		zap.String("followee_id", event.FolloweeID),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
