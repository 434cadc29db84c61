package usecase

import (
	"context"
	"errors"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

// IdentityResolver turns an external identity reference, either a canonical
// id or a handle, into the stored identity. Every lookup the service exposes
// goes through this single resolution path.
type IdentityResolver struct {
	identities port.IdentityRepository
}

// NewIdentityResolver constructs a resolver over the identity repository.
func NewIdentityResolver(identities port.IdentityRepository) *IdentityResolver {
	return &IdentityResolver{identities: identities}
}

// Resolve looks up the identity named by raw. A reference that parses as a
// UUID resolves by id; anything else resolves by handle. A reference that
// matches nothing surfaces KindNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, raw string) (*domain.Identity, error) {
	ref, err := domain.ParseReference(raw)
	if err != nil {
		return nil, validationError("identity reference must not be empty")
	}

	var identity *domain.Identity
	switch ref.Kind {
	case domain.RefByID:
		identity, err = r.identities.GetByID(ctx, ref.Value)
	case domain.RefByHandle:
		identity, err = r.identities.GetByHandle(ctx, ref.Value)
	default:
		return nil, validationError("unsupported identity reference")
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("identity not found")
		}
		return nil, internalError("resolve identity", err)
	}

	return identity, nil
}

// ResolveID looks up an identity strictly by its canonical id.
func (r *IdentityResolver) ResolveID(ctx context.Context, id string) (*domain.Identity, error) {
	identity, err := r.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFoundError("identity not found")
		}
		return nil, internalError("resolve identity", err)
	}
	return identity, nil
}
