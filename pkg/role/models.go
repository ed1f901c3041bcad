package role

import (
	"github.com/google/uuid"
)

// Well-known role names. Bootstrap creates both before any user exists.
const (
	AdminRoleName   = "ROLE_ADMIN"
	DefaultRoleName = "ROLE_USER"
)

// Role represents a named authorization grant assignable to users
type Role struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
