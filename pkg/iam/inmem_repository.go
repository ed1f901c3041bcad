package iam

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-rbac/pkg/role"
)

// InMemoryUserRepository implements UserRepository using in-memory storage.
// Role bindings are resolved against the supplied role repository on read,
// mirroring the foreign-key join the PostgreSQL implementation performs.
type InMemoryUserRepository struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]User
	userRoles map[uuid.UUID][]uuid.UUID // userID -> []roleID
	roleRepo  role.RoleRepository
}

// NewInMemoryUserRepository creates a new in-memory user repository
func NewInMemoryUserRepository(roleRepo role.RoleRepository) *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:     make(map[uuid.UUID]User),
		userRoles: make(map[uuid.UUID][]uuid.UUID),
		roleRepo:  roleRepo,
	}
}

// CreateUser creates a new user with its role bindings
func (r *InMemoryUserRepository) CreateUser(ctx context.Context, row CreateUserRow) (UserWithRoles, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == row.Username {
			return UserWithRoles{}, ErrUsernameExists
		}
	}

	now := time.Now()
	user := User{
		ID:             uuid.New(),
		CreatedAt:      now,
		LastModifiedAt: now,
		Username:       row.Username,
		PasswordHash:   row.PasswordHash,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		Age:            row.Age,
	}

	r.users[user.ID] = user
	r.userRoles[user.ID] = dedupeIDs(row.RoleIDs)
	return r.withRoles(ctx, user)
}

// GetUserWithRoles gets a user with their roles by ID
func (r *InMemoryUserRepository) GetUserWithRoles(ctx context.Context, id uuid.UUID) (UserWithRoles, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return UserWithRoles{}, ErrUserNotFound
	}
	return r.withRoles(ctx, user)
}

// GetUserByUsername gets a user with their roles by username
func (r *InMemoryUserRepository) GetUserByUsername(ctx context.Context, username string) (UserWithRoles, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return r.withRoles(ctx, user)
		}
	}
	return UserWithRoles{}, ErrUserNotFound
}

// FindUsersWithRoles finds all users with their roles
func (r *InMemoryUserRepository) FindUsersWithRoles(ctx context.Context) ([]UserWithRoles, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []UserWithRoles
	for _, user := range r.users {
		withRoles, err := r.withRoles(ctx, user)
		if err != nil {
			return nil, err
		}
		result = append(result, withRoles)
	}
	return result, nil
}

// UpdateUser updates a user and replaces its role bindings wholesale
func (r *InMemoryUserRepository) UpdateUser(ctx context.Context, row UpdateUserRow) (UserWithRoles, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[row.ID]
	if !ok {
		return UserWithRoles{}, ErrUserNotFound
	}

	for _, existing := range r.users {
		if existing.ID != row.ID && existing.Username == row.Username {
			return UserWithRoles{}, ErrUsernameExists
		}
	}

	user.Username = row.Username
	// Empty incoming hash keeps the stored one
	if row.PasswordHash != "" {
		user.PasswordHash = row.PasswordHash
	}
	user.FirstName = row.FirstName
	user.LastName = row.LastName
	user.Email = row.Email
	user.Age = row.Age
	user.LastModifiedAt = time.Now()

	r.users[row.ID] = user
	r.userRoles[row.ID] = dedupeIDs(row.RoleIDs)
	return r.withRoles(ctx, user)
}

// DeleteUser removes a user and its role bindings
func (r *InMemoryUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	delete(r.userRoles, id)
	return nil
}

// withRoles resolves the stored role bindings. Bindings to roles that no
// longer resolve are skipped.
func (r *InMemoryUserRepository) withRoles(ctx context.Context, user User) (UserWithRoles, error) {
	roleIDs := r.userRoles[user.ID]
	roles := make([]role.Role, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		resolved, err := r.roleRepo.GetRoleByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, role.ErrRoleNotFound) {
				continue
			}
			return UserWithRoles{}, err
		}
		roles = append(roles, resolved)
	}
	return UserWithRoles{User: user, Roles: roles}, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
