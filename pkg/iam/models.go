package iam

import (
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-rbac/pkg/role"
)

// User represents a user account in the system.
// PasswordHash is always the output of the credential policy's one-way
// hash, never a raw secret, and is never serialized into API responses.
type User struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	LastModifiedAt time.Time `json:"last_modified_at"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	Email          string    `json:"email"`
	Age            int       `json:"age,omitempty"`
}

// UserWithRoles represents a user with their assigned roles
type UserWithRoles struct {
	User
	Roles []role.Role `json:"roles"`
}

// RoleNames returns the names of the user's granted roles
func (u UserWithRoles) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// CreateUserParams contains parameters for creating a new user.
// Password carries the raw secret and is hashed before persistence.
type CreateUserParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Age       int
}

// UpdateUserParams contains parameters for updating a user.
// An empty Password means the stored hash is kept unchanged.
type UpdateUserParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	Age       int
}

// CreateUserRow is the persistence shape for a new user record
type CreateUserRow struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	Age          int
	RoleIDs      []uuid.UUID
}

// UpdateUserRow is the persistence shape for a user update. The role set
// replaces the existing bindings wholesale. An empty PasswordHash keeps
// the stored hash unchanged, resolved within the update's unit of work.
type UpdateUserRow struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	Age          int
	RoleIDs      []uuid.UUID
}
