package models

import (
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User matches the users table created by the migrations.
// Columns: id, email (NOT NULL UNIQUE), password_hash, created_at, last_login_at
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Password     string     `json:"-"` // plain password, request-scoped only
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Prepare() {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = html.EscapeString(strings.TrimSpace(u.Email))
}
