package models

import "time"

// Role is the authorization role attached to an [Identity].
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
	RoleViewer  Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleWorker, RoleViewer:
		return true
	}
	return false
}

// Identity is the authenticated user record resolved from the identity
// backend's profile table. It is owned by the session manager and is replaced
// only through login, refresh or logout.
type Identity struct {
	// ID is the identity backend's user identifier (usually a UUID).
	ID string `json:"id"`

	// Email is the e-mail address or handle used to sign in.
	Email string `json:"email"`

	// Role drives local authorization checks.
	Role Role `json:"role"`

	// CreatedAt is the profile creation time.
	CreatedAt time.Time `json:"created_at"`

	// LastLoginAt is set by the client on every successful login.
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
