package iam

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-rbac/pkg/role"
)

// testHasher is a deterministic stand-in for the bcrypt credential policy
type testHasher struct{}

func (testHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

type testEnv struct {
	roleService *role.RoleService
	service     *IamService
	adminRole   role.Role
	userRole    role.Role
}

func setupIamService(t *testing.T) testEnv {
	ctx := context.Background()

	roleRepo := role.NewInMemoryRoleRepository()
	roleService := role.NewRoleService(roleRepo)

	adminRole, err := roleService.CreateRole(ctx, role.AdminRoleName)
	require.NoError(t, err)
	userRole, err := roleService.CreateRole(ctx, role.DefaultRoleName)
	require.NoError(t, err)

	repo := NewInMemoryUserRepository(roleRepo)
	return testEnv{
		roleService: roleService,
		service:     NewIamService(repo, roleService, testHasher{}),
		adminRole:   adminRole,
		userRole:    userRole,
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	user, err := env.service.CreateUser(ctx, CreateUserParams{
		Username:  "bob",
		Password:  "pw",
		FirstName: "Bob",
		LastName:  "Builder",
		Email:     "bob@example.com",
		Age:       30,
	}, []uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "bob", user.Username)
	assert.NotEqual(t, "pw", user.PasswordHash)
	assert.ElementsMatch(t, []string{role.DefaultRoleName}, user.RoleNames())

	found, err := env.service.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.PasswordHash, found.PasswordHash)
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	_, err := env.service.CreateUser(ctx, CreateUserParams{Password: "pw"}, nil)
	assert.Error(t, err)

	_, err = env.service.CreateUser(ctx, CreateUserParams{Username: "bob"}, nil)
	assert.Error(t, err)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	_, err := env.service.CreateUser(ctx, CreateUserParams{Username: "bob", Password: "pw"}, nil)
	require.NoError(t, err)

	_, err = env.service.CreateUser(ctx, CreateUserParams{Username: "bob", Password: "other"}, nil)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreateUserDropsUnresolvableRoleIds(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	user, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID, uuid.New()})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{role.DefaultRoleName}, user.RoleNames())
}

func TestCreateUserWithDefaultRoles(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	user, err := env.service.CreateUserWithDefaultRoles(ctx,
		CreateUserParams{Username: "carol", Password: "pw"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{role.DefaultRoleName}, user.RoleNames())
}

func TestUpdateUserKeepsHashOnBlankPassword(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	updated, err := env.service.UpdateUser(ctx, created.ID, UpdateUserParams{
		Username: "bob",
		Email:    "newbob@example.com",
	}, []uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.Equal(t, "newbob@example.com", updated.Email)
}

func TestUpdateUserRehashesNewPassword(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	updated, err := env.service.UpdateUser(ctx, created.ID, UpdateUserParams{
		Username: "bob",
		Password: "newpw",
	}, []uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)
	assert.NotEqual(t, "newpw", updated.PasswordHash)
}

func TestUpdateUserEmptyRoleIdsBindsDefaults(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.adminRole.ID, env.userRole.ID})
	require.NoError(t, err)

	updated, err := env.service.UpdateUser(ctx, created.ID,
		UpdateUserParams{Username: "bob"}, nil)
	require.NoError(t, err)

	// Empty role id list means defaults, not no roles
	assert.ElementsMatch(t, []string{role.DefaultRoleName}, updated.RoleNames())
}

func TestUpdateUserReplacesRoleSetWholesale(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	updated, err := env.service.UpdateUser(ctx, created.ID,
		UpdateUserParams{Username: "bob"},
		[]uuid.UUID{env.adminRole.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{role.AdminRoleName}, updated.RoleNames())
}

func TestUpdateUserTargetIdWins(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	// The update persists under the supplied target id regardless of any
	// id carried in the incoming payload.
	updated, err := env.service.UpdateUser(ctx, created.ID,
		UpdateUserParams{Username: "bob", FirstName: "Robert"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	_, err = env.service.UpdateUser(ctx, uuid.New(),
		UpdateUserParams{Username: "ghost"}, []uuid.UUID{env.userRole.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	env := setupIamService(t)

	created, err := env.service.CreateUser(ctx,
		CreateUserParams{Username: "bob", Password: "pw"},
		[]uuid.UUID{env.userRole.ID})
	require.NoError(t, err)

	require.NoError(t, env.service.DeleteUser(ctx, created.ID))

	_, err = env.service.GetUser(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Deleting an absent id fails the same way on every call
	err = env.service.DeleteUser(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	err = env.service.DeleteUser(ctx, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
