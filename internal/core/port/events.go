package port

import (
	"context"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus. The post and
// comment services consume these to keep their identity foreign keys and
// feed fan-out in sync.
type EventPublisher interface {
	PublishIdentityRegistered(ctx context.Context, event domain.IdentityRegisteredEvent) error
	PublishIdentityDeleted(ctx context.Context, event domain.IdentityDeletedEvent) error
	PublishFollowCreated(ctx context.Context, event domain.FollowCreatedEvent) error
	PublishFollowRemoved(ctx context.Context, event domain.FollowRemovedEvent) error
}
