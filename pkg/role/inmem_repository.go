package role

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRoleRepository implements RoleRepository using in-memory storage
type InMemoryRoleRepository struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]Role
}

// NewInMemoryRoleRepository creates a new in-memory role repository
func NewInMemoryRoleRepository() *InMemoryRoleRepository {
	return &InMemoryRoleRepository{
		roles: make(map[uuid.UUID]Role),
	}
}

// FindRoles returns all roles
func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	return roles, nil
}

// GetRoleByID retrieves a role by ID
func (r *InMemoryRoleRepository) GetRoleByID(ctx context.Context, id uuid.UUID) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// GetRoleByName retrieves a role by its unique name
func (r *InMemoryRoleRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrRoleNotFound
}

// CreateRole creates a new role
func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.roles {
		if existing.Name == name {
			return Role{}, ErrRoleNameExists
		}
	}

	role := Role{ID: uuid.New(), Name: name}
	r.roles[role.ID] = role
	return role, nil
}
