package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

// GraphService maintains the symmetric follow relation. Each follow is one
// edge record, so both directions of the relationship change together or
// not at all.
type GraphService struct {
	resolver *IdentityResolver
	edges    port.GraphRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewGraphService constructs the follow graph service.
func NewGraphService(resolver *IdentityResolver, edges port.GraphRepository, events port.EventPublisher, logger *zap.Logger) *GraphService {
	return &GraphService{resolver: resolver, edges: edges, events: events, logger: logger}
}

// Follow records that follower follows the identity named by followeeRef.
// Following an identity twice and following yourself are both rejected.
func (s *GraphService) Follow(ctx context.Context, follower *domain.Identity, followeeRef string) error {
	followee, err := s.resolver.Resolve(ctx, followeeRef)
	if err != nil {
		return err
	}

	if follower.ID == followee.ID {
		return validationError("cannot follow yourself")
	}

	now := time.Now().UTC()
	if err := s.edges.CreateEdge(ctx, follower.ID, followee.ID, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrEdgeExists):
			return conflictError("already following this identity")
		case errors.Is(err, repository.ErrNotFound):
			// An endpoint was deleted between resolution and insert.
			return notFoundError("identity not found")
		default:
			return internalError("create follow edge", err)
		}
	}

	s.publishFollowCreated(ctx, follower.ID, followee.ID, now)

	return nil
}

// Unfollow removes the follower -> followee edge. Removing an absent edge is
// a no-op so retried unfollows always succeed.
func (s *GraphService) Unfollow(ctx context.Context, follower *domain.Identity, followeeRef string) error {
	followee, err := s.resolver.Resolve(ctx, followeeRef)
	if err != nil {
		return err
	}

	if follower.ID == followee.ID {
		return validationError("cannot unfollow yourself")
	}

	removed, err := s.edges.DeleteEdge(ctx, follower.ID, followee.ID)
	if err != nil {
		return internalError("delete follow edge", err)
	}

	if removed {
		s.publishFollowRemoved(ctx, follower.ID, followee.ID, time.Now().UTC())
	}

	return nil
}

// Followers lists the identities following the identity named by ref.
func (s *GraphService) Followers(ctx context.Context, ref string) ([]domain.FollowProfile, error) {
	identity, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	profiles, err := s.edges.ListFollowers(ctx, identity.ID)
	if err != nil {
		return nil, internalError("list followers", err)
	}

	return profiles, nil
}

// Following lists the identities that the identity named by ref follows.
func (s *GraphService) Following(ctx context.Context, ref string) ([]domain.FollowProfile, error) {
	identity, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	profiles, err := s.edges.ListFollowing(ctx, identity.ID)
	if err != nil {
		return nil, internalError("list following", err)
	}

	return profiles, nil
}

func (s *GraphService) publishFollowCreated(ctx context.Context, followerID, followeeID string, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.FollowCreatedEvent{
		EventID:    uuid.NewString(),
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  at,
	}

	if err := s.events.PublishFollowCreated(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish follow created event failed",
			zap.String("follower_id", followerID),
			zap.String("followee_id", followeeID),
			zap.Error(err),
		)
	}
}

func (s *GraphService) publishFollowRemoved(ctx context.Context, followerID, followeeID string, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.FollowRemovedEvent{
		EventID:    uuid.NewString(),
		FollowerID: followerID,
		FolloweeID: followeeID,
		RemovedAt:  at,
	}

	if err := s.events.PublishFollowRemoved(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish follow removed event failed",
			zap.String("follower_id", followerID),
			zap.String("followee_id", followeeID),
			zap.Error(err),
		)
	}
}
