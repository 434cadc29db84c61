package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/core/port"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
)

// stubIdentityRepository is an in-memory port.IdentityRepository used across
// the service tests.
type stubIdentityRepository struct {
	mu         sync.Mutex
	identities map[string]domain.Identity

	createErr error
	lookupErr error
}

func newStubIdentityRepository() *stubIdentityRepository {
	return &stubIdentityRepository{identities: make(map[string]domain.Identity)}
}

func (s *stubIdentityRepository) Create(_ context.Context, identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}

	for _, existing := range s.identities {
		if existing.Handle == identity.Handle || existing.Email == identity.Email {
			return repository.ErrDuplicate
		}
	}

	s.identities[identity.ID] = identity
	return nil
}

func (s *stubIdentityRepository) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	identity, ok := s.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &identity, nil
}

func (s *stubIdentityRepository) GetByHandle(_ context.Context, handle string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	for _, identity := range s.identities {
		if identity.Handle == handle {
			copied := identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubIdentityRepository) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	for _, identity := range s.identities {
		if identity.Email == email {
			copied := identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubIdentityRepository) ExistsByHandleOrEmail(_ context.Context, handle, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, identity := range s.identities {
		if identity.Handle == handle || identity.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubIdentityRepository) UpdateProfile(_ context.Context, identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.identities[identity.ID]
	if !ok {
		return repository.ErrNotFound
	}

	for id, existing := range s.identities {
		if id == identity.ID {
			continue
		}
		if existing.Handle == identity.Handle || existing.Email == identity.Email {
			return repository.ErrDuplicate
		}
	}

	identity.PasswordHash = current.PasswordHash
	s.identities[identity.ID] = identity
	return nil
}

func (s *stubIdentityRepository) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.identities[id]
	if !ok {
		return repository.ErrNotFound
	}

	identity.PasswordHash = passwordHash
	identity.UpdatedAt = changedAt
	s.identities[id] = identity
	return nil
}

func (s *stubIdentityRepository) Delete(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.identities[id]; !ok {
		return 0, repository.ErrNotFound
	}
	delete(s.identities, id)
	return 0, nil
}

var _ port.IdentityRepository = (*stubIdentityRepository)(nil)

type edgeKey struct {
	follower string
	followee string
}

// stubGraphRepository is an in-memory port.GraphRepository backed by the
// identity stub so traversals can return profiles.
type stubGraphRepository struct {
	mu         sync.Mutex
	edges      map[edgeKey]time.Time
	identities *stubIdentityRepository

	createErr error
}

func newStubGraphRepository(identities *stubIdentityRepository) *stubGraphRepository {
	return &stubGraphRepository{
		edges:      make(map[edgeKey]time.Time),
		identities: identities,
	}
}

func (s *stubGraphRepository) CreateEdge(_ context.Context, followerID, followeeID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}

	key := edgeKey{follower: followerID, followee: followeeID}
	if _, exists := s.edges[key]; exists {
		return repository.ErrEdgeExists
	}
	s.edges[key] = at
	return nil
}

func (s *stubGraphRepository) DeleteEdge(_ context.Context, followerID, followeeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := edgeKey{follower: followerID, followee: followeeID}
	if _, exists := s.edges[key]; !exists {
		return false, nil
	}
	delete(s.edges, key)
	return true, nil
}

func (s *stubGraphRepository) ListFollowers(_ context.Context, id string) ([]domain.FollowProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []domain.FollowProfile
	for key := range s.edges {
		if key.followee != id {
			continue
		}
		if identity, ok := s.identities.identities[key.follower]; ok {
			profiles = append(profiles, domain.FollowProfile{
				ID:             identity.ID,
				Handle:         identity.Handle,
				Email:          identity.Email,
				ProfilePicture: identity.ProfilePicture,
			})
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

func (s *stubGraphRepository) ListFollowing(_ context.Context, id string) ([]domain.FollowProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var profiles []domain.FollowProfile
	for key := range s.edges {
		if key.follower != id {
			continue
		}
		if identity, ok := s.identities.identities[key.followee]; ok {
			profiles = append(profiles, domain.FollowProfile{
				ID:             identity.ID,
				Handle:         identity.Handle,
				Email:          identity.Email,
				ProfilePicture: identity.ProfilePicture,
			})
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

func (s *stubGraphRepository) CountEdges(_ context.Context, id string) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var followers, following int
	for key := range s.edges {
		if key.followee == id {
			followers++
		}
		if key.follower == id {
			following++
		}
	}
	return followers, following, nil
}

var _ port.GraphRepository = (*stubGraphRepository)(nil)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.IdentityRegisteredEvent
	deleted    []domain.IdentityDeletedEvent
	followed   []domain.FollowCreatedEvent
	unfollowed []domain.FollowRemovedEvent
}

func (r *recordingPublisher) PublishIdentityRegistered(_ context.Context, event domain.IdentityRegisteredEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registered = append(r.registered, event)
	return nil
}

func (r *recordingPublisher) PublishIdentityDeleted(_ context.Context, event domain.IdentityDeletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, event)
	return nil
}

func (r *recordingPublisher) PublishFollowCreated(_ context.Context, event domain.FollowCreatedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.followed = append(r.followed, event)
	return nil
}

func (r *recordingPublisher) PublishFollowRemoved(_ context.Context, event domain.FollowRemovedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unfollowed = append(r.unfollowed, event)
	return nil
}

var _ port.EventPublisher = (*recordingPublisher)(nil)
