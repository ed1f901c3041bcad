package role

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	// Create PostgreSQL container
	dbName := "rbac_db"
	dbUser := "rbac"
	dbPassword := "pwd"

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithInitScripts(filepath.Join("../../migrations", "rbac_db.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	connString, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	poolConfig, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestPostgresRoleRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewPostgresRoleRepository(pool)

	admin, err := repo.CreateRole(ctx, AdminRoleName)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, admin.ID)
	assert.Equal(t, AdminRoleName, admin.Name)

	user, err := repo.CreateRole(ctx, DefaultRoleName)
	require.NoError(t, err)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.CreateRole(ctx, AdminRoleName)
		assert.ErrorIs(t, err, ErrRoleNameExists)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetRoleByID(ctx, admin.ID)
		require.NoError(t, err)
		assert.Equal(t, admin, got)

		_, err = repo.GetRoleByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("get by name", func(t *testing.T) {
		got, err := repo.GetRoleByName(ctx, DefaultRoleName)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = repo.GetRoleByName(ctx, "ROLE_NOBODY")
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})

	t.Run("find roles ordered by name", func(t *testing.T) {
		roles, err := repo.FindRoles(ctx)
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, AdminRoleName, roles[0].Name)
		assert.Equal(t, DefaultRoleName, roles[1].Name)
	})
}
