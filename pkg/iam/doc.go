// Package iam provides user management for simple-rbac.
//
// The package manages user accounts and their role bindings with support
// for PostgreSQL and alternative storage backends through the
// UserRepository interface.
//
// # Overview
//
// The iam package provides:
//   - User lifecycle management (create, read, update, delete)
//   - Many-to-many role binding with wholesale role-set replacement
//   - Password hashing through the credential policy (pkg/login)
//   - Repository pattern for database abstraction
//
// # Basic Usage
//
//	import (
//		"github.com/tendant/simple-rbac/pkg/iam"
//		"github.com/tendant/simple-rbac/pkg/login"
//		"github.com/tendant/simple-rbac/pkg/role"
//	)
//
//	roleService := role.NewRoleService(role.NewPostgresRoleRepository(pool))
//	repo := iam.NewPostgresUserRepository(pool)
//	service := iam.NewIamService(repo, roleService, login.NewBcryptHasher())
//
//	// Create a user with roles; the raw password is hashed before persistence
//	user, err := service.CreateUser(ctx, iam.CreateUserParams{
//		Username: "jdoe",
//		Password: "secret",
//		Email:    "jdoe@example.com",
//	}, roleIds)
//
//	// Create a user with the default role set
//	user, err := service.CreateUserWithDefaultRoles(ctx, params)
//
//	// Update a user; an empty role id list binds the default roles, and a
//	// blank password keeps the stored hash unchanged
//	user, err := service.UpdateUser(ctx, userId, params, roleIds)
//
//	// Delete a user
//	err := service.DeleteUser(ctx, userId)
//
// # Error Handling
//
// Get-style reads and DeleteUser return ErrUserNotFound for absent
// records; CreateUser and UpdateUser surface ErrUsernameExists when the
// store's uniqueness constraint is violated. Store faults propagate
// unchanged for the HTTP boundary to map.
//
// # Testing
//
// Use the in-memory repository for service tests:
//
//	roleRepo := role.NewInMemoryRoleRepository()
//	repo := iam.NewInMemoryUserRepository(roleRepo)
//	service := iam.NewIamService(repo, role.NewRoleService(roleRepo), hasher)
//
// # Related Packages
//
//   - pkg/role - Role management and role-set resolution
//   - pkg/login - Credential policy and principal lookup
//   - pkg/bootstrap - Startup seeding
package iam
