// Package role provides role management for simple-rbac.
//
// Roles are named authorization grants (e.g. "ROLE_ADMIN") assignable to
// users. The package supports PostgreSQL and alternative storage backends
// through the RoleRepository interface.
//
// # Basic Usage
//
//	import "github.com/tendant/simple-rbac/pkg/role"
//
//	// Create service
//	repo := role.NewPostgresRoleRepository(pool)
//	service := role.NewRoleService(repo)
//
//	// Create a role
//	adminRole, err := service.CreateRole(ctx, role.AdminRoleName)
//
//	// List all roles
//	roles, err := service.FindRoles(ctx)
//
//	// Resolve role IDs to roles (set semantics, unresolvable IDs dropped)
//	roles, err := service.ResolveRoles(ctx, roleIds)
//
//	// Default role set for users created without explicit roles
//	defaults, err := service.DefaultRoles(ctx)
//
// Role names are unique within the store. Roles are created by
// administrators or by bootstrap seeding and are never mutated afterwards;
// there is no delete path.
//
// # Related Packages
//
//   - pkg/iam - User management and user-role binding
//   - pkg/login - Credential hashing and principal lookup
//   - pkg/bootstrap - Startup seeding of the well-known roles
package role
