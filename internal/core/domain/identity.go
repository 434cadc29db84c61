package domain

import "time"

// RoleClient is the role every identity receives at registration.
const RoleClient = "client"

// Identity mirrors the persisted representation in the identities table.
// Follow edges live in their own table; the follower/following sets of an
// identity are derived views over those edges.
type Identity struct {
	ID             string
	Handle         string
	Email          string
	PasswordHash   string
	ProfilePicture string
	Bio            string
	Roles          []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicIdentity is the outward projection of an Identity. It is the only
// identity shape that crosses the transport boundary and never carries the
// password hash.
type PublicIdentity struct {
	ID             string
	Handle         string
	Email          string
	ProfilePicture string
	Bio            string
	Roles          []string
	Followers      int
	Following      int
	CreatedAt      time.Time
}

// Public builds the outward projection with the supplied edge counts.
func (i Identity) Public(followers, following int) PublicIdentity {
	roles := make([]string, len(i.Roles))
	copy(roles, i.Roles)

	return PublicIdentity{
		ID:             i.ID,
		Handle:         i.Handle,
		Email:          i.Email,
		ProfilePicture: i.ProfilePicture,
		Bio:            i.Bio,
		Roles:          roles,
		Followers:      followers,
		Following:      following,
		CreatedAt:      i.CreatedAt,
	}
}

// FollowProfile is the minimal projection returned by graph traversals.
type FollowProfile struct {
	ID             string
	Handle         string
	Email          string
	ProfilePicture string
}
