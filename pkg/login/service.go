package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/tendant/simple-rbac/pkg/iam"
)

// ErrUserNotFound is returned by GetPrincipal when no user exists under
// the requested username. Unlike get-style reads on the user service,
// the authentication gateway requires a definite outcome.
var ErrUserNotFound = errors.New("user not found")

// Principal is the authentication-facing view of a user: the username,
// the stored credential hash, and the granted role names the external
// gateway encodes into its session or token claims.
type Principal struct {
	Username     string
	PasswordHash string
	Roles        []string
}

// UserLookup is the slice of the user service the auth service needs
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (iam.UserWithRoles, error)
}

// AuthService adapts the user service to the lookup contract an external
// authentication gateway consumes
type AuthService struct {
	users  UserLookup
	hasher PasswordHasher
}

// NewAuthService creates a new authentication lookup service
func NewAuthService(users UserLookup, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// GetPrincipal loads the principal for a username. A missing user is an
// explicit ErrUserNotFound failure, never a nil principal.
func (s *AuthService) GetPrincipal(ctx context.Context, username string) (Principal, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, iam.ErrUserNotFound) {
			return Principal{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
		}
		return Principal{}, fmt.Errorf("failed to load principal: %w", err)
	}

	return Principal{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		Roles:        user.RoleNames(),
	}, nil
}

// VerifyCredentials loads the principal and checks the supplied raw
// password against its stored hash. The boolean is false for a wrong
// password; a missing user is still ErrUserNotFound.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (Principal, bool, error) {
	principal, err := s.GetPrincipal(ctx, username)
	if err != nil {
		return Principal{}, false, err
	}

	ok, err := s.hasher.Verify(password, principal.PasswordHash)
	if err != nil {
		return Principal{}, false, fmt.Errorf("error checking password: %w", err)
	}
	return principal, ok, nil
}
