package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// AuthUser is the authenticated caller extracted from verified token
// claims. The token itself is issued and owned by the external
// authentication gateway; this package only consumes its claims.
type AuthUser struct {
	Subject  string   `json:"sub,omitempty"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("sub", u.Subject),
		slog.String("username", u.Username),
	)
}

// HasRole reports whether the caller holds the named role
func (u AuthUser) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the caller holds any of the named roles
func (u AuthUser) HasAnyRole(names ...string) bool {
	for _, name := range names {
		if u.HasRole(name) {
			return true
		}
	}
	return false
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "simple-rbac context value " + k.name
}

var authUserKey = &contextKey{"AuthUser"}

// AuthUserMiddleware extracts the authenticated caller from
// jwtauth-verified claims and stores it in the request context.
// Must be used after jwtauth.Verifier.
func AuthUserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("missing or invalid JWT: %v", err), http.StatusUnauthorized)
			return
		}

		authUser := AuthUser{}
		if sub, ok := claims["sub"].(string); ok {
			authUser.Subject = sub
		}
		if username, ok := claims["username"].(string); ok {
			authUser.Username = username
		}
		if rawRoles, ok := claims["roles"].([]interface{}); ok {
			for _, raw := range rawRoles {
				if role, ok := raw.(string); ok {
					authUser.Roles = append(authUser.Roles, role)
				}
			}
		}

		if authUser.Username == "" {
			http.Error(w, "missing username claim", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthUser returns the authenticated caller stored by
// AuthUserMiddleware. The boolean is false when the request carries none.
func GetAuthUser(r *http.Request) (AuthUser, bool) {
	authUser, ok := r.Context().Value(authUserKey).(AuthUser)
	return authUser, ok
}
