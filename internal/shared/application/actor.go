package application

import (
	"errors"

	"github.com/google/uuid"
)

// Role is what the authenticated caller may do.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

var (
	// ErrUnauthenticated means no usable identity was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the caller is known but lacks the right role or ownership.
	ErrForbidden = errors.New("not permitted")
)

// Actor is the caller of a command or query. For clients UserID is the
// client record id; for the practitioner it is the admin's auth user id.
type Actor struct {
	UserID uuid.UUID
	Role   Role
	Email  string
}

// SystemActor is used by inbound webhooks and the worker.
var SystemActor = Actor{Role: RoleAdmin, Email: "system"}

// IsAdmin reports whether the actor is the practitioner (or the system).
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAdmin fails unless the actor is an admin.
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanAccessClient reports whether the actor may see data owned by clientID.
func (a Actor) CanAccessClient(clientID uuid.UUID) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleClient && a.UserID != uuid.Nil && a.UserID == clientID
}

// IsAuthorization reports whether err is an authentication or authorization failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden)
}
