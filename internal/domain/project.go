package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project is a published or draft project. Sponsorships may only reference
// published projects, and choice lists offer published projects only.
type Project struct {
	ID        uuid.UUID
	Code      string
	Title     string
	Summary   string
	Published bool
	CreatedAt time.Time
}

// Contract binds a client to a project; progress logs hang off it.
type Contract struct {
	ID        uuid.UUID
	Code      string
	ClientID  uuid.UUID
	ProjectID uuid.UUID
	CreatedAt time.Time
}
