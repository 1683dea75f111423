package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actor is an authenticated account holding exactly one active role.
// Ownership of every record resolves, through its parent chain, to an actor.
type Actor struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Role      Role
	CreatedAt time.Time
}

// Principal is the identity attached to an inbound request: the actor id and
// the active role the identity collaborator resolved for it. The pipeline
// only ever compares it against record ownership.
type Principal struct {
	ActorID uuid.UUID
	Role    Role
}

// HasRole reports whether the principal's active role matches r.
func (p Principal) HasRole(r Role) bool { return p.Role == r }
