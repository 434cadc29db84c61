package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
	"github.com/JCCG-code/tripshot-backend/internal/infra/config"
	"github.com/JCCG-code/tripshot-backend/internal/infra/security"
	"github.com/JCCG-code/tripshot-backend/internal/repository"
	httproutes "github.com/JCCG-code/tripshot-backend/internal/transport/http/routes"
	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// memoryStore is a combined in-memory identity and graph store for routing
// tests.
type memoryStore struct {
	mu         sync.Mutex
	identities map[string]domain.Identity
	edges      map[[2]string]time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		identities: make(map[string]domain.Identity),
		edges:      make(map[[2]string]time.Time),
	}
}

func (m *memoryStore) Create(_ context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.identities {
		if existing.Handle == identity.Handle || existing.Email == identity.Email {
			return repository.ErrDuplicate
		}
	}
	m.identities[identity.ID] = identity
	return nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &identity, nil
}

func (m *memoryStore) GetByHandle(_ context.Context, handle string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.Handle == handle {
			copied := identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryStore) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.Email == email {
			copied := identity
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryStore) ExistsByHandleOrEmail(_ context.Context, handle, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, identity := range m.identities {
		if identity.Handle == handle || identity.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) UpdateProfile(_ context.Context, identity domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.identities[identity.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range m.identities {
		if id == identity.ID {
			continue
		}
		if other.Handle == identity.Handle || other.Email == identity.Email {
			return repository.ErrDuplicate
		}
	}
	identity.PasswordHash = current.PasswordHash
	m.identities[identity.ID] = identity
	return nil
}

func (m *memoryStore) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.identities[id]
	if !ok {
		return repository.ErrNotFound
	}
	identity.PasswordHash = passwordHash
	identity.UpdatedAt = changedAt
	m.identities[id] = identity
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.identities[id]; !ok {
		return 0, repository.ErrNotFound
	}
	delete(m.identities, id)
	removed := 0
	for key := range m.edges {
		if key[0] == id || key[1] == id {
			delete(m.edges, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryStore) CreateEdge(_ context.Context, followerID, followeeID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, exists := m.edges[key]; exists {
		return repository.ErrEdgeExists
	}
	m.edges[key] = at
	return nil
}

func (m *memoryStore) DeleteEdge(_ context.Context, followerID, followeeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{followerID, followeeID}
	if _, exists := m.edges[key]; !exists {
		return false, nil
	}
	delete(m.edges, key)
	return true, nil
}

func (m *memoryStore) ListFollowers(_ context.Context, id string) ([]domain.FollowProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var profiles []domain.FollowProfile
	for key := range m.edges {
		if key[1] != id {
			continue
		}
		if identity, ok := m.identities[key[0]]; ok {
			profiles = append(profiles, domain.FollowProfile{ID: identity.ID, Handle: identity.Handle, Email: identity.Email})
		}
	}
	return profiles, nil
}

func (m *memoryStore) ListFollowing(_ context.Context, id string) ([]domain.FollowProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var profiles []domain.FollowProfile
	for key := range m.edges {
		if key[0] != id {
			continue
		}
		if identity, ok := m.identities[key[1]]; ok {
			profiles = append(profiles, domain.FollowProfile{ID: identity.ID, Handle: identity.Handle, Email: identity.Email})
		}
	}
	return profiles, nil
}

func (m *memoryStore) CountEdges(_ context.Context, id string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var followers, following int
	for key := range m.edges {
		if key[1] == id {
			followers++
		}
		if key[0] == id {
			following++
		}
	}
	return followers, following, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	store := newMemoryStore()

	hasher, err := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2Hasher: %v", err)
	}

	tokens, err := security.NewTokenIssuer("routes-test-secret", "tripshot-backend", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}

	validator := security.NewPasswordValidator(security.MinLengthRule(8))
	resolver := usecase.NewIdentityResolver(store)

	services := httproutes.ServiceSet{
		Auth:     usecase.NewAuthService(store, hasher, tokens, validator, nil, logger),
		Profiles: usecase.NewProfileService(resolver, store, store, hasher, validator, nil, logger),
		Graph:    usecase.NewGraphService(resolver, store, nil, logger),
	}

	return httproutes.Register(httproutes.Dependencies{
		Config: &config.AppConfig{
			App:     config.AppSettings{Env: "test"},
			Session: config.SessionSettings{TokenTTL: 24 * time.Hour},
		},
		Logger:   logger,
		Services: services,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerIdentity(t *testing.T, router *gin.Engine, handle string) (id, token string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"handle":   handle,
		"email":    handle + "@example.com",
		"password": "orange-crane-39",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", handle, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token    string `json:"token"`
		Identity struct {
			ID string `json:"id"`
		} `json:"identity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp.Identity.ID, resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	router := newTestRouter(t)

	_, token := registerIdentity(t, router, "wanderer")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "wanderer@example.com",
		"password": "orange-crane-39",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", rec.Code)
	}
}

func TestLoginFailureIsGeneric(t *testing.T) {
	router := newTestRouter(t)
	registerIdentity(t, router, "wanderer")

	unknown := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "orange-crane-39",
	})
	wrong := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "wanderer@example.com",
		"password": "wrong-password-1",
	})

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", unknown.Code, wrong.Code)
	}

	var unknownBody, wrongBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(unknown.Body.Bytes(), &unknownBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(wrong.Body.Bytes(), &wrongBody); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if unknownBody.Error != wrongBody.Error {
		t.Fatalf("failure messages differ: %q vs %q", unknownBody.Error, wrongBody.Error)
	}
}

func TestFollowFlow(t *testing.T) {
	router := newTestRouter(t)

	aliceID, aliceToken := registerIdentity(t, router, "alice")
	_, bobToken := registerIdentity(t, router, "bob")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/users/alice/follow", bobToken, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("follow: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A duplicate follow conflicts.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/alice/follow", bobToken, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate follow: expected 409, got %d", rec.Code)
	}

	// Self-follow is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/alice/follow", aliceToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("self follow: expected 400, got %d", rec.Code)
	}

	// Followers visible by handle and by id.
	for _, ref := range []string{"alice", aliceID} {
		rec = doJSON(t, router, http.MethodGet, "/api/v1/users/"+ref+"/followers", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("followers of %s: expected 200, got %d", ref, rec.Code)
		}
		var resp struct {
			Count int `json:"count"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode followers: %v", err)
		}
		if resp.Count != 1 {
			t.Fatalf("followers of %s: expected count 1, got %d", ref, resp.Count)
		}
	}

	// Unfollow is idempotent.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/alice/follow", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unfollow: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/alice/follow", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeated unfollow: expected 200, got %d", rec.Code)
	}

	// Anonymous follow is rejected.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/users/alice/follow", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous follow: expected 401, got %d", rec.Code)
	}
}

func TestProfileLifecycle(t *testing.T) {
	router := newTestRouter(t)

	aliceID, aliceToken := registerIdentity(t, router, "alice")
	_, bobToken := registerIdentity(t, router, "bob")

	// Public read without a session.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/alice", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d", rec.Code)
	}

	// Another identity cannot update or delete alice.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/users/alice", bobToken, map[string]string{"bio": "hijacked"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign update: expected 401, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/alice", bobToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign delete: expected 401, got %d", rec.Code)
	}

	// Self update.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/users/"+aliceID, aliceToken, map[string]string{"bio": "trip photos"})
	if rec.Code != http.StatusOK {
		t.Fatalf("self update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Renaming onto a taken handle conflicts.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/users/"+aliceID, aliceToken, map[string]string{"handle": "bob"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("handle conflict: expected 409, got %d", rec.Code)
	}

	// Self delete, then tokens and lookups go stale.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/users/"+aliceID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("self delete: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/users/alice", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted profile: expected 404, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/auth/me", aliceToken, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("stale token: expected 401, got %d", rec.Code)
	}
}

func TestUnknownReferenceReturns404(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/users/nobody",
		fmt.Sprintf("/api/v1/users/%s", "7f8b0d3e-6f6a-4f4d-9d1e-1a2b3c4d5e6f"),
	} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}
