package models

import (
	"time"

	"github.com/google/uuid"
)

type LinkStatus string

const (
	LinkActive  LinkStatus = "active"
	LinkExpired LinkStatus = "expired"
	LinkRevoked LinkStatus = "revoked"
)

// ShareLink is a capability token for anonymous access to one diagram.
// ExpiresAt nil means the link never expires.
type ShareLink struct {
	ID        uuid.UUID  `json:"id"`
	DiagramID uuid.UUID  `json:"diagram_id"`
	Name      string     `json:"name"`
	Token     string     `json:"token"`
	Role      string     `json:"role"` // viewer or editor
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Status derives the link state at instant now. Revocation wins over
// expiry.
func (l *ShareLink) Status(now time.Time) LinkStatus {
	if l.RevokedAt != nil {
		return LinkRevoked
	}
	if l.ExpiresAt != nil && l.ExpiresAt.Before(now) {
		return LinkExpired
	}
	return LinkActive
}

type SubjectType string

const (
	SubjectUser SubjectType = "user"
	SubjectTeam SubjectType = "team"
)

// AccessGrant gives a user or team a role on a diagram. The owner needs
// no grant; owners are implicit admins.
type AccessGrant struct {
	ID          uuid.UUID   `json:"id"`
	DiagramID   uuid.UUID   `json:"diagram_id"`
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   uuid.UUID   `json:"subject_id"`
	Role        string      `json:"role"` // viewer, editor or admin
	CreatedAt   time.Time   `json:"created_at"`
}
