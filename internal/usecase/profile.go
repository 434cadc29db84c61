package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/infra/security"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

// ProfileService reads and mutates identity profiles.
type ProfileService struct {
	resolver   *IdentityResolver
	identities port.IdentityRepository
	edges      port.GraphRepository
	hasher     port.PasswordHasher
	validator  *security.PasswordValidator
	events     port.EventPublisher
	logger     *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(
	resolver *IdentityResolver,
	identities port.IdentityRepository,
	edges port.GraphRepository,
	hasher port.PasswordHasher,
	validator *security.PasswordValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) *ProfileService {
	if validator == nil {
		validator = security.DefaultPasswordValidator(8, 2)
	}
	return &ProfileService{
		resolver:   resolver,
		identities: identities,
		edges:      edges,
		hasher:     hasher,
		validator:  validator,
		events:     events,
		logger:     logger,
	}
}

// ProfileUpdate carries the mutable profile fields. Nil means "leave as is".
// An empty password never triggers a rehash.
type ProfileUpdate struct {
	Handle         *string
	Email          *string
	Bio            *string
	ProfilePicture *string
	Password       string
}

// Get resolves ref and returns the public projection with live edge counts.
func (s *ProfileService) Get(ctx context.Context, ref string) (domain.PublicIdentity, error) {
	identity, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return domain.PublicIdentity{}, err
	}

	followers, following, err := s.edges.CountEdges(ctx, identity.ID)
	if err != nil {
		return domain.PublicIdentity{}, internalError("count follow edges", err)
	}

	return identity.Public(followers, following), nil
}

// Update applies a profile change. Only the identity itself may update its
// record. A non-empty password is validated and rehashed; an empty one
// leaves the stored hash untouched.
func (s *ProfileService) Update(ctx context.Context, actor *domain.Identity, ref string, update ProfileUpdate) (domain.PublicIdentity, error) {
	target, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return domain.PublicIdentity{}, err
	}

	if actor.ID != target.ID {
		return domain.PublicIdentity{}, unauthorizedError("cannot update another identity")
	}

	changed := *target

	if update.Handle != nil {
		handle := strings.TrimSpace(*update.Handle)
		if handle == "" {
			return domain.PublicIdentity{}, validationError("handle must not be empty")
		}
		if len(handle) > maxHandleLength {
			return domain.PublicIdentity{}, validationError("handle is too long")
		}
		changed.Handle = handle
	}
	if update.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*update.Email))
		if email == "" || !strings.Contains(email, "@") {
			return domain.PublicIdentity{}, validationError("a valid email is required")
		}
		changed.Email = email
	}
	if update.Bio != nil {
		changed.Bio = strings.TrimSpace(*update.Bio)
	}
	if update.ProfilePicture != nil {
		changed.ProfilePicture = strings.TrimSpace(*update.ProfilePicture)
	}

	now := time.Now().UTC()
	changed.UpdatedAt = now

	if err := s.identities.UpdateProfile(ctx, changed); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return domain.PublicIdentity{}, conflictError("handle or email is already in use")
		case errors.Is(err, repository.ErrNotFound):
			return domain.PublicIdentity{}, notFoundError("identity not found")
		default:
			return domain.PublicIdentity{}, internalError("update profile", err)
		}
	}

	if password := strings.TrimSpace(update.Password); password != "" {
		if err := s.validator.Validate(password); err != nil {
			return domain.PublicIdentity{}, validationError(err.Error())
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return domain.PublicIdentity{}, internalError("hash password", err)
		}

		if err := s.identities.UpdatePassword(ctx, changed.ID, hash, now); err != nil {
			return domain.PublicIdentity{}, internalError("update password", err)
		}
	}

	followers, following, err := s.edges.CountEdges(ctx, changed.ID)
	if err != nil {
		return domain.PublicIdentity{}, internalError("count follow edges", err)
	}

	return changed.Public(followers, following), nil
}

// Delete removes an identity together with every follow edge touching it.
// Only the identity itself may delete its record.
func (s *ProfileService) Delete(ctx context.Context, actor *domain.Identity, ref string) error {
	target, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	if actor.ID != target.ID {
		return unauthorizedError("cannot delete another identity")
	}

	edgesRemoved, err := s.identities.Delete(ctx, target.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFoundError("identity not found")
		}
		return internalError("delete identity", err)
	}

	s.publishDeleted(ctx, target, edgesRemoved, time.Now().UTC())

	return nil
}

func (s *ProfileService) publishDeleted(ctx context.Context, identity *domain.Identity, edgesRemoved int, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.IdentityDeletedEvent{
		EventID:      uuid.NewString(),
		IdentityID:   identity.ID,
		Handle:       identity.Handle,
		EdgesRemoved: edgesRemoved,
		DeletedAt:    at,
	}

	if err := s.events.PublishIdentityDeleted(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish identity deleted event failed",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
	}
}
