package domain

import "time"

// IdentityRegisteredEvent represents the payload for social.identity.registered messages.
type IdentityRegisteredEvent struct {
	EventID      string
	IdentityID   string
	Handle       string
	Email        string
	Roles        []string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// IdentityDeletedEvent represents the payload for social.identity.deleted messages.
// EdgesRemoved counts the follow edges cascaded away with the identity.
type IdentityDeletedEvent struct {
	EventID      string
	IdentityID   string
	Handle       string
	EdgesRemoved int
	DeletedAt    time.Time
	Metadata     map[string]any
}

// FollowCreatedEvent represents the payload for social.graph.followed messages.
type FollowCreatedEvent struct {
	EventID    string
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
	Metadata   map[string]any
}

// FollowRemovedEvent represents the payload for social.graph.unfollowed messages.
type FollowRemovedEvent struct {
	EventID    string
	FollowerID string
	FolloweeID string
	RemovedAt  time.Time
	Metadata   map[string]any
}
