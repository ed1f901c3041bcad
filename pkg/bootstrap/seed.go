package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tendant/simple-rbac/pkg/iam"
	"github.com/tendant/simple-rbac/pkg/role"
)

// SeedConfig contains the seed accounts created on first start. Raw
// passwords go through the user service, which hashes them; seeding never
// writes credentials to the store directly.
type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME" env-default:"admin"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" env-default:"admin"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" env-default:"admin@example.com"`
	UserUsername  string `env:"SEED_USER_USERNAME" env-default:"user"`
	UserPassword  string `env:"SEED_USER_PASSWORD" env-default:"user"`
	UserEmail     string `env:"SEED_USER_EMAIL" env-default:"user@example.com"`
}

// Seeder creates the well-known roles and the first accounts on an empty
// store, using only service-level operations
type Seeder struct {
	roleService *role.RoleService
	iamService  *iam.IamService
	cfg         SeedConfig
}

// NewSeeder creates a new seeder
func NewSeeder(roleService *role.RoleService, iamService *iam.IamService, cfg SeedConfig) *Seeder {
	return &Seeder{
		roleService: roleService,
		iamService:  iamService,
		cfg:         cfg,
	}
}

// Seed ensures the well-known roles and seed accounts exist. It is called
// once at startup; a store that already holds roles or users is left
// untouched. A missing required role after role seeding aborts startup.
func (s *Seeder) Seed(ctx context.Context) error {
	if err := s.seedRoles(ctx); err != nil {
		return err
	}
	return s.seedUsers(ctx)
}

func (s *Seeder) seedRoles(ctx context.Context) error {
	roles, err := s.roleService.FindRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to find roles: %w", err)
	}
	if len(roles) > 0 {
		slog.Info("Roles already exist - skipping role seeding", "count", len(roles))
		return nil
	}

	for _, name := range []string{role.AdminRoleName, role.DefaultRoleName} {
		created, err := s.roleService.CreateRole(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}
		slog.Info("Seeded role", "role", created.Name, "roleId", created.ID)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context) error {
	users, err := s.iamService.FindUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to find users: %w", err)
	}
	if len(users) > 0 {
		slog.Info("Users already exist - skipping user seeding", "count", len(users))
		return nil
	}

	adminRole, err := s.roleService.GetRoleByName(ctx, role.AdminRoleName)
	if err != nil {
		return fmt.Errorf("required role %s missing: %w", role.AdminRoleName, err)
	}
	userRole, err := s.roleService.GetRoleByName(ctx, role.DefaultRoleName)
	if err != nil {
		return fmt.Errorf("required role %s missing: %w", role.DefaultRoleName, err)
	}

	admin, err := s.iamService.CreateUser(ctx, iam.CreateUserParams{
		Username:  s.cfg.AdminUsername,
		Password:  s.cfg.AdminPassword,
		FirstName: "Admin",
		LastName:  "Adminov",
		Email:     s.cfg.AdminEmail,
		Age:       30,
	}, []uuid.UUID{adminRole.ID, userRole.ID})
	if err != nil {
		return fmt.Errorf("failed to create seed admin: %w", err)
	}
	slog.Info("Seeded admin user", "userId", admin.ID, "username", admin.Username)

	user, err := s.iamService.CreateUser(ctx, iam.CreateUserParams{
		Username:  s.cfg.UserUsername,
		Password:  s.cfg.UserPassword,
		FirstName: "User",
		LastName:  "Userov",
		Email:     s.cfg.UserEmail,
		Age:       25,
	}, []uuid.UUID{userRole.ID})
	if err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}
	slog.Info("Seeded regular user", "userId", user.ID, "username", user.Username)

	return nil
}
