package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-rbac/pkg/role"
)

// UserRepository defines the interface for user persistence. Write
// operations that touch both the user row and its role bindings execute
// as one atomic unit of work.
type UserRepository interface {
	CreateUser(ctx context.Context, row CreateUserRow) (UserWithRoles, error)
	GetUserWithRoles(ctx context.Context, id uuid.UUID) (UserWithRoles, error)
	GetUserByUsername(ctx context.Context, username string) (UserWithRoles, error)
	FindUsersWithRoles(ctx context.Context) ([]UserWithRoles, error)
	UpdateUser(ctx context.Context, row UpdateUserRow) (UserWithRoles, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// PostgresUserRepository implements UserRepository using pgx
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgreSQL-based user repository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		pool: pool,
	}
}

// CreateUser inserts the user row and its role bindings in one transaction
func (r *PostgresUserRepository) CreateUser(ctx context.Context, row CreateUserRow) (UserWithRoles, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO users (id, username, password_hash, first_name, last_name, email, age)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		uuid.New(), row.Username, row.PasswordHash, row.FirstName, row.LastName, row.Email, row.Age).
		Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return UserWithRoles{}, ErrUsernameExists
		}
		return UserWithRoles{}, fmt.Errorf("failed to insert user: %w", err)
	}

	if err := insertUserRoles(ctx, tx, id, row.RoleIDs); err != nil {
		return UserWithRoles{}, err
	}

	user, err := getUserWithRoles(ctx, tx, `u.id = $1`, id)
	if err != nil {
		return UserWithRoles{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// GetUserWithRoles gets a user with their roles by ID
func (r *PostgresUserRepository) GetUserWithRoles(ctx context.Context, id uuid.UUID) (UserWithRoles, error) {
	return getUserWithRoles(ctx, r.pool, `u.id = $1`, id)
}

// GetUserByUsername gets a user with their roles by username
func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (UserWithRoles, error) {
	return getUserWithRoles(ctx, r.pool, `u.username = $1`, username)
}

// FindUsersWithRoles finds all users with their roles
func (r *PostgresUserRepository) FindUsersWithRoles(ctx context.Context) ([]UserWithRoles, error) {
	rows, err := r.pool.Query(ctx, userWithRolesQuery+` GROUP BY u.id ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []UserWithRoles
	for rows.Next() {
		user, err := scanUserWithRoles(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser updates the user row and replaces its role bindings wholesale
// in one transaction
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, row UpdateUserRow) (UserWithRoles, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// An empty incoming hash means keep the stored one, resolved here so
	// the read and the write share the transaction
	tag, err := tx.Exec(ctx,
		`UPDATE users
		 SET username = $2, password_hash = COALESCE(NULLIF($3, ''), password_hash),
		     first_name = $4, last_name = $5,
		     email = $6, age = $7, last_modified_at = now()
		 WHERE id = $1`,
		row.ID, row.Username, row.PasswordHash, row.FirstName, row.LastName, row.Email, row.Age)
	if err != nil {
		if isUniqueViolation(err) {
			return UserWithRoles{}, ErrUsernameExists
		}
		return UserWithRoles{}, fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return UserWithRoles{}, ErrUserNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, row.ID); err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to clear user roles: %w", err)
	}
	if err := insertUserRoles(ctx, tx, row.ID, row.RoleIDs); err != nil {
		return UserWithRoles{}, err
	}

	user, err := getUserWithRoles(ctx, tx, `u.id = $1`, row.ID)
	if err != nil {
		return UserWithRoles{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return UserWithRoles{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user and its role bindings
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const userWithRolesQuery = `
SELECT u.id, u.created_at, u.last_modified_at,
       u.username, u.password_hash, u.first_name, u.last_name, u.email, u.age,
       COALESCE(array_agg(r.id) FILTER (WHERE r.id IS NOT NULL), '{}') AS role_ids,
       COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}') AS role_names
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id`

func getUserWithRoles(ctx context.Context, q querier, where string, arg any) (UserWithRoles, error) {
	row := q.QueryRow(ctx, userWithRolesQuery+` WHERE `+where+` GROUP BY u.id`, arg)
	user, err := scanUserWithRoles(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserWithRoles{}, ErrUserNotFound
		}
		return UserWithRoles{}, err
	}
	return user, nil
}

func scanUserWithRoles(row pgx.Row) (UserWithRoles, error) {
	var user UserWithRoles
	var roleIDs []uuid.UUID
	var roleNames []string
	err := row.Scan(&user.ID, &user.CreatedAt, &user.LastModifiedAt,
		&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email, &user.Age,
		&roleIDs, &roleNames)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserWithRoles{}, err
		}
		return UserWithRoles{}, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Roles = make([]role.Role, 0, len(roleIDs))
	for i := range roleIDs {
		user.Roles = append(user.Roles, role.Role{ID: roleIDs[i], Name: roleNames[i]})
	}
	return user, nil
}

func insertUserRoles(ctx context.Context, tx pgx.Tx, userID uuid.UUID, roleIDs []uuid.UUID) error {
	for _, roleID := range roleIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, roleID)
		if err != nil {
			return fmt.Errorf("failed to assign role %s: %w", roleID, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
