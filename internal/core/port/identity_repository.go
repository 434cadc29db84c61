package port

import (
	"context"
	"time"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
)

// IdentityRepository persists identity records.
type IdentityRepository interface {
	// Create inserts a new identity. A handle or email collision surfaces
	// repository.ErrDuplicate.
	Create(ctx context.Context, identity domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	// ExistsByHandleOrEmail reports whether any identity already claims the
	// handle or the email. Case-sensitive exact match, one combined lookup.
	ExistsByHandleOrEmail(ctx context.Context, handle, email string) (bool, error)
	// UpdateProfile persists handle, email, bio, and profile picture changes.
	UpdateProfile(ctx context.Context, identity domain.Identity) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	// Delete removes the identity and every follow edge touching it in one
	// transaction, returning the number of edges cascaded away.
	Delete(ctx context.Context, id string) (int, error)
}

// GraphRepository persists the follow relation. Each edge is a single
// record owned jointly by the pair, so inserting or deleting it updates
// both "sides" of the relationship atomically.
type GraphRepository interface {
	// CreateEdge inserts the follower -> followee edge. An edge that is
	// already present surfaces repository.ErrEdgeExists; a vanished
	// endpoint surfaces repository.ErrNotFound.
	CreateEdge(ctx context.Context, followerID, followeeID string, at time.Time) error
	// DeleteEdge removes the edge if present and reports whether a row was
	// actually deleted. Removing a missing edge is not an error.
	DeleteEdge(ctx context.Context, followerID, followeeID string) (bool, error)
	ListFollowers(ctx context.Context, id string) ([]domain.FollowProfile, error)
	ListFollowing(ctx context.Context, id string) ([]domain.FollowProfile, error)
	// CountEdges returns the follower and following cardinalities for id.
	CountEdges(ctx context.Context, id string) (followers int, following int, err error)
}
