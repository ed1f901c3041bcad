package login

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-rbac/pkg/iam"
	"github.com/tendant/simple-rbac/pkg/role"
)

func setupAuthService(t *testing.T) (*iam.IamService, *AuthService) {
	ctx := context.Background()

	roleRepo := role.NewInMemoryRoleRepository()
	roleService := role.NewRoleService(roleRepo)
	_, err := roleService.CreateRole(ctx, role.AdminRoleName)
	require.NoError(t, err)
	_, err = roleService.CreateRole(ctx, role.DefaultRoleName)
	require.NoError(t, err)

	hasher := NewBcryptHasher()
	iamService := iam.NewIamService(iam.NewInMemoryUserRepository(roleRepo), roleService, hasher)
	return iamService, NewAuthService(iamService, hasher)
}

func TestGetPrincipal(t *testing.T) {
	ctx := context.Background()
	iamService, authService := setupAuthService(t)

	user, err := iamService.CreateUserWithDefaultRoles(ctx, iam.CreateUserParams{
		Username: "bob",
		Password: "pw",
	})
	require.NoError(t, err)

	principal, err := authService.GetPrincipal(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.Username)
	assert.Equal(t, user.PasswordHash, principal.PasswordHash)
	assert.ElementsMatch(t, []string{role.DefaultRoleName}, principal.Roles)
}

func TestGetPrincipalUserNotFound(t *testing.T) {
	ctx := context.Background()
	_, authService := setupAuthService(t)

	_, err := authService.GetPrincipal(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestVerifyCredentials(t *testing.T) {
	ctx := context.Background()
	iamService, authService := setupAuthService(t)

	_, err := iamService.CreateUserWithDefaultRoles(ctx, iam.CreateUserParams{
		Username: "bob",
		Password: "pw",
	})
	require.NoError(t, err)

	principal, ok, err := authService.VerifyCredentials(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "bob", principal.Username)

	_, ok, err = authService.VerifyCredentials(ctx, "bob", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = authService.VerifyCredentials(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
