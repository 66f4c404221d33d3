// Package models defines data models for the alumni relationship service.
package models

import "time"

// User represents an authenticatable account.
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Password    []byte     `json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	IsActive    bool       `json:"is_active"`
	IsStaff     bool       `json:"is_staff"`
	IsSuperuser bool       `json:"is_superuser"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// IsAdmin reports whether the user may use the administrative endpoints.
func (u User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

type NewUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  []byte `json:"-"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AccountPatch carries the allow-listed self-service account fields.
// Nil fields are left untouched.
type AccountPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// AuthToken is the opaque bearer credential for API clients.
// At most one exists per user.
type AuthToken struct {
	Key       string    `json:"key"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a server-side browser session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type NewSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}

// PasswordResetToken is a single-use credential for the reset-password flow.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type NewPasswordResetToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// AuditEntry is an append-only record of an administrative mutation.
type AuditEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	ActorID     *string   `json:"actor_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewAuditEntry struct {
	Title       string
	Category    string
	Description string
	ActorID     *string
}
