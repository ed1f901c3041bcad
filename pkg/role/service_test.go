package role

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRoleService() *RoleService {
	return NewRoleService(NewInMemoryRoleRepository())
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	role, err := service.CreateRole(ctx, AdminRoleName)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, role.ID)
	assert.Equal(t, AdminRoleName, role.Name)

	found, err := service.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, role, found)
}

func TestCreateRoleEmptyName(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	_, err := service.CreateRole(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyRoleName)
}

func TestCreateRoleDuplicateName(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	_, err := service.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	_, err = service.CreateRole(ctx, DefaultRoleName)
	assert.ErrorIs(t, err, ErrRoleNameExists)
}

func TestGetRoleByName(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	created, err := service.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	found, err := service.GetRoleByName(ctx, DefaultRoleName)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = service.GetRoleByName(ctx, "ROLE_MISSING")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestFindRoles(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	roles, err := service.FindRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)

	_, err = service.CreateRole(ctx, AdminRoleName)
	require.NoError(t, err)
	_, err = service.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	roles, err = service.FindRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}

func TestResolveRoles(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	admin, err := service.CreateRole(ctx, AdminRoleName)
	require.NoError(t, err)
	user, err := service.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	tests := []struct {
		name      string
		roleIds   []uuid.UUID
		wantNames []string
	}{
		{
			name:      "resolves all ids",
			roleIds:   []uuid.UUID{admin.ID, user.ID},
			wantNames: []string{AdminRoleName, DefaultRoleName},
		},
		{
			name:      "duplicate ids collapse",
			roleIds:   []uuid.UUID{admin.ID, admin.ID, user.ID},
			wantNames: []string{AdminRoleName, DefaultRoleName},
		},
		{
			name:      "unresolvable ids are dropped",
			roleIds:   []uuid.UUID{admin.ID, uuid.New()},
			wantNames: []string{AdminRoleName},
		},
		{
			name:      "empty input",
			roleIds:   nil,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles, err := service.ResolveRoles(ctx, tt.roleIds)
			require.NoError(t, err)

			names := make([]string, 0, len(roles))
			for _, r := range roles {
				names = append(names, r.Name)
			}
			assert.ElementsMatch(t, tt.wantNames, names)
		})
	}
}

func TestDefaultRoles(t *testing.T) {
	ctx := context.Background()
	service := setupRoleService()

	// Missing default role is a configuration fault
	_, err := service.DefaultRoles(ctx)
	assert.ErrorIs(t, err, ErrDefaultRoleMissing)

	created, err := service.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	roles, err := service.DefaultRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, created.ID, roles[0].ID)
	assert.Equal(t, DefaultRoleName, roles[0].Name)
}
