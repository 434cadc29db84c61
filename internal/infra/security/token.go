package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim checks.
	ErrInvalidToken = errors.New("token: invalid session token")
	// ErrExpiredToken is returned when a token is syntactically valid but expired.
	ErrExpiredToken = errors.New("token: session token expired")
)

// SessionClaims carries the identity reference inside a signed session token.
type SessionClaims struct {
	IdentityID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens bound to a single
// shared secret. Tokens carry the identity id and a bounded lifetime.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer constructs an issuer. The secret must be non-empty and the
// TTL positive.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token: ttl must be positive")
	}
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL reports the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a session token for the provided identity id.
func (t *TokenIssuer) Issue(identityID uuid.UUID) (string, error) {
	now := t.now()

	claims := SessionClaims{
		IdentityID: identityID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identityID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Verify checks the signature and lifetime of a session token and returns the
// identity id it was issued for.
func (t *TokenIssuer) Verify(raw string) (uuid.UUID, error) {
	claims := &SessionClaims{}

	parsed, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("token: unexpected signing method %q", tok.Method.Alg())
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}

	if !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	subject := claims.IdentityID
	if subject == "" {
		subject = claims.Subject
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}
