package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

var (
	ErrEmptyRoleName      = errors.New("role name cannot be empty")
	ErrRoleNotFound       = errors.New("role not found")
	ErrRoleNameExists     = errors.New("role name already exists")
	ErrDefaultRoleMissing = errors.New("default role is not configured")
)

// RoleService provides methods for role management
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}

// GetRole retrieves a role by ID
func (s *RoleService) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	return s.repo.GetRoleByID(ctx, id)
}

// GetRoleByName retrieves a role by its unique name
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}

// CreateRole adds a new role
func (s *RoleService) CreateRole(ctx context.Context, name string) (Role, error) {
	if name == "" {
		return Role{}, ErrEmptyRoleName
	}
	return s.repo.CreateRole(ctx, name)
}

// ResolveRoles resolves role IDs to roles with set semantics: duplicate
// IDs collapse and IDs with no matching role are dropped from the result.
func (s *RoleService) ResolveRoles(ctx context.Context, roleIds []uuid.UUID) ([]Role, error) {
	seen := make(map[uuid.UUID]bool, len(roleIds))
	roles := make([]Role, 0, len(roleIds))
	var dropped []uuid.UUID

	for _, roleId := range roleIds {
		if seen[roleId] {
			continue
		}
		seen[roleId] = true

		role, err := s.repo.GetRoleByID(ctx, roleId)
		if err != nil {
			if errors.Is(err, ErrRoleNotFound) {
				dropped = append(dropped, roleId)
				continue
			}
			return nil, fmt.Errorf("failed to resolve role %s: %w", roleId, err)
		}
		roles = append(roles, role)
	}

	if len(dropped) > 0 {
		slog.Warn("Dropped unresolvable role ids", "roleIds", dropped)
	}

	return roles, nil
}

// DefaultRoles returns the role set bound to a user when no explicit roles
// are supplied. The default role must exist; a missing default role is a
// configuration fault and callers at startup should treat it as fatal.
func (s *RoleService) DefaultRoles(ctx context.Context) ([]Role, error) {
	role, err := s.repo.GetRoleByName(ctx, DefaultRoleName)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDefaultRoleMissing, DefaultRoleName)
		}
		return nil, fmt.Errorf("failed to resolve default role: %w", err)
	}
	return []Role{role}, nil
}
