package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JCCG-code/tripshot-backend/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with the trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// IdentitySummary is the public identity view returned by the API.
type IdentitySummary struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Roles          []string  `json:"roles,omitempty"`
	Followers      int       `json:"followers"`
	Following      int       `json:"following"`
	CreatedAt      time.Time `json:"created_at"`
}

func newIdentitySummary(identity domain.PublicIdentity) IdentitySummary {
	return IdentitySummary{
		ID:             identity.ID,
		Handle:         identity.Handle,
		Email:          identity.Email,
		ProfilePicture: identity.ProfilePicture,
		Bio:            identity.Bio,
		Roles:          identity.Roles,
		Followers:      identity.Followers,
		Following:      identity.Following,
		CreatedAt:      identity.CreatedAt,
	}
}

// FollowEntry is the compact identity view returned by graph traversals.
type FollowEntry struct {
	ID             string `json:"id"`
	Handle         string `json:"handle"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func newFollowEntries(profiles []domain.FollowProfile) []FollowEntry {
	entries := make([]FollowEntry, 0, len(profiles))
	for _, profile := range profiles {
		entries = append(entries, FollowEntry{
			ID:             profile.ID,
			Handle:         profile.Handle,
			Email:          profile.Email,
			ProfilePicture: profile.ProfilePicture,
		})
	}
	return entries
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest defines the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is returned for a successful register or login.
type SessionResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresIn int             `json:"expires_in"`
	Identity  IdentitySummary `json:"identity"`
}

// UpdateProfileRequest carries the mutable profile fields. Absent fields are
// left unchanged; an empty password never triggers a rehash.
type UpdateProfileRequest struct {
	Handle         *string `json:"handle"`
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
	Password       string  `json:"password"`
}

// FollowListResponse wraps a graph traversal result.
type FollowListResponse struct {
	Identities []FollowEntry `json:"identities"`
	Count      int           `json:"count"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
