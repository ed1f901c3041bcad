package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/tendant/simple-rbac/pkg/role"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")
)

// PasswordHasher is the credential policy the service hashes raw
// passwords with before persistence. Satisfied by login.BcryptHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// IamService provides user management operations, composing the role
// service for role binding and the credential policy for password hashing
type IamService struct {
	repo        UserRepository
	roleService *role.RoleService
	hasher      PasswordHasher
}

// NewIamService creates a new IAM service
func NewIamService(repo UserRepository, roleService *role.RoleService, hasher PasswordHasher) *IamService {
	return &IamService{
		repo:        repo,
		roleService: roleService,
		hasher:      hasher,
	}
}

func (s *IamService) FindUsers(ctx context.Context) ([]UserWithRoles, error) {
	return s.repo.FindUsersWithRoles(ctx)
}

func (s *IamService) GetUser(ctx context.Context, userId uuid.UUID) (UserWithRoles, error) {
	return s.repo.GetUserWithRoles(ctx, userId)
}

func (s *IamService) GetUserByUsername(ctx context.Context, username string) (UserWithRoles, error) {
	return s.repo.GetUserByUsername(ctx, username)
}

// CreateUser creates a new user bound to the resolved role set. The raw
// password is hashed before persistence; unresolvable role ids are
// dropped by the role service's resolution policy.
func (s *IamService) CreateUser(ctx context.Context, params CreateUserParams, roleIds []uuid.UUID) (UserWithRoles, error) {
	if params.Username == "" {
		return UserWithRoles{}, fmt.Errorf("username is required")
	}
	if params.Password == "" {
		return UserWithRoles{}, fmt.Errorf("password is required")
	}

	roles, err := s.roleService.ResolveRoles(ctx, roleIds)
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to resolve roles: %w", err)
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, CreateUserRow{
		Username:     params.Username,
		PasswordHash: passwordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Age:          params.Age,
		RoleIDs:      roleIDsOf(roles),
	})
	if err != nil {
		return UserWithRoles{}, err
	}

	slog.Info("Created user", "userId", user.ID, "roles", user.RoleNames())
	return user, nil
}

// CreateUserWithDefaultRoles creates a new user bound to the default role
// set instead of an explicit one
func (s *IamService) CreateUserWithDefaultRoles(ctx context.Context, params CreateUserParams) (UserWithRoles, error) {
	defaults, err := s.roleService.DefaultRoles(ctx)
	if err != nil {
		return UserWithRoles{}, err
	}
	return s.CreateUser(ctx, params, roleIDsOf(defaults))
}

// UpdateUser updates a user under the supplied id, replacing the role set
// wholesale. An empty roleIds list binds the default role set, not an
// empty one. A blank params.Password keeps the stored hash unchanged,
// resolved inside the store's update transaction; otherwise the new raw
// password is hashed and replaces it. The id argument always wins over
// any id carried in the payload.
func (s *IamService) UpdateUser(ctx context.Context, userId uuid.UUID, params UpdateUserParams, roleIds []uuid.UUID) (UserWithRoles, error) {
	var roles []role.Role
	var err error
	if len(roleIds) > 0 {
		roles, err = s.roleService.ResolveRoles(ctx, roleIds)
	} else {
		roles, err = s.roleService.DefaultRoles(ctx)
	}
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to resolve roles: %w", err)
	}

	// A blank password travels as an empty hash; the repository keeps
	// the stored hash inside its update transaction.
	passwordHash := ""
	if params.Password != "" {
		passwordHash, err = s.hasher.Hash(params.Password)
		if err != nil {
			return UserWithRoles{}, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	user, err := s.repo.UpdateUser(ctx, UpdateUserRow{
		ID:           userId,
		Username:     params.Username,
		PasswordHash: passwordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Age:          params.Age,
		RoleIDs:      roleIDsOf(roles),
	})
	if err != nil {
		return UserWithRoles{}, err
	}

	slog.Info("Updated user", "userId", user.ID, "roles", user.RoleNames())
	return user, nil
}

// DeleteUser removes a user. Deleting an id that does not exist returns
// ErrUserNotFound, consistently across repeated calls.
func (s *IamService) DeleteUser(ctx context.Context, userId uuid.UUID) error {
	return s.repo.DeleteUser(ctx, userId)
}

func roleIDsOf(roles []role.Role) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	return ids
}
