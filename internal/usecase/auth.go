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

// credentialMismatchMessage is deliberately identical for unknown emails and
// wrong passwords so a caller cannot probe which accounts exist.
const credentialMismatchMessage = "credentials do not match"

const maxHandleLength = 64

// AuthService handles registration, login, and session token verification.
type AuthService struct {
	identities port.IdentityRepository
	hasher     port.PasswordHasher
	tokens     *security.TokenIssuer
	validator  *security.PasswordValidator
	events     port.EventPublisher
	logger     *zap.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(
	identities port.IdentityRepository,
	hasher port.PasswordHasher,
	tokens *security.TokenIssuer,
	validator *security.PasswordValidator,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if validator == nil {
		validator = security.DefaultPasswordValidator(8, 2)
	}
	return &AuthService{
		identities: identities,
		hasher:     hasher,
		tokens:     tokens,
		validator:  validator,
		events:     events,
		logger:     logger,
	}
}

// Session pairs an identity with a freshly issued token.
type Session struct {
	Identity domain.PublicIdentity
	Token    string
	IssuedAt time.Time
}

// Register creates a new identity from unique credentials and opens a
// session for it. The handle and email availability check is a single
// combined lookup; the database unique constraints close the race left
// between check and insert.
func (s *AuthService) Register(ctx context.Context, handle, email, password string) (Session, error) {
	handle = strings.TrimSpace(handle)
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)

	if handle == "" {
		return Session{}, validationError("handle is required")
	}
	if len(handle) > maxHandleLength {
		return Session{}, validationError("handle is too long")
	}
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, validationError("a valid email is required")
	}
	if password == "" {
		return Session{}, validationError("password is required")
	}
	if err := s.validator.Validate(password); err != nil {
		return Session{}, validationError(err.Error())
	}

	taken, err := s.identities.ExistsByHandleOrEmail(ctx, handle, email)
	if err != nil {
		return Session{}, internalError("check credential availability", err)
	}
	if taken {
		return Session{}, conflictError("handle or email is already in use")
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return Session{}, internalError("hash password", err)
	}

	now := time.Now().UTC()
	identity := domain.Identity{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        []string{domain.RoleClient},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Session{}, conflictError("handle or email is already in use")
		}
		return Session{}, internalError("create identity", err)
	}

	token, err := s.tokens.Issue(uuid.MustParse(identity.ID))
	if err != nil {
		return Session{}, internalError("issue session token", err)
	}

	s.publishRegistered(ctx, identity, now)

	return Session{
		Identity: identity.Public(0, 0),
		Token:    token,
		IssuedAt: now,
	}, nil
}

// Login verifies the email and password pair and opens a session. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Session{}, unauthorizedError(credentialMismatchMessage)
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Session{}, unauthorizedError(credentialMismatchMessage)
		}
		return Session{}, internalError("lookup identity", err)
	}

	ok, err := s.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		return Session{}, internalError("verify password", err)
	}
	if !ok {
		return Session{}, unauthorizedError(credentialMismatchMessage)
	}

	id, err := uuid.Parse(identity.ID)
	if err != nil {
		return Session{}, internalError("parse identity id", err)
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		return Session{}, internalError("issue session token", err)
	}

	return Session{
		Identity: identity.Public(0, 0),
		Token:    token,
		IssuedAt: time.Now().UTC(),
	}, nil
}

// IdentifyByToken verifies a session token and loads the identity it was
// issued for. A valid token whose identity has since been deleted is
// rejected the same way a forged token is.
func (s *AuthService) IdentifyByToken(ctx context.Context, raw string) (*domain.Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, unauthorizedError("session token is required")
	}

	id, err := s.tokens.Verify(raw)
	if err != nil {
		if errors.Is(err, security.ErrExpiredToken) {
			return nil, unauthorizedError("session token expired")
		}
		return nil, unauthorizedError("invalid session token")
	}

	identity, err := s.identities.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, unauthorizedError("invalid session token")
		}
		return nil, internalError("lookup identity", err)
	}

	return identity, nil
}

func (s *AuthService) publishRegistered(ctx context.Context, identity domain.Identity, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.IdentityRegisteredEvent{
		EventID:      uuid.NewString(),
		IdentityID:   identity.ID,
		Handle:       identity.Handle,
		Email:        identity.Email,
		Roles:        identity.Roles,
		RegisteredAt: at,
	}

	if err := s.events.PublishIdentityRegistered(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("publish identity registered event failed",
			zap.String("identity_id", identity.ID),
			zap.Error(err),
		)
	}
}
