package client

import (
	"log/slog"
	"net/http"

	"github.com/tendant/simple-rbac/pkg/role"
)

// RequireRole returns a middleware that checks if the authenticated
// caller has any of the specified roles.
// Returns 401 Unauthorized if not authenticated.
// Returns 403 Forbidden if authenticated but missing the required role.
// Must be used after AuthUserMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := GetAuthUser(r)
			if !ok {
				slog.Debug("Unauthenticated request to role-protected resource", "requiredRoles", roles)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !authUser.HasAnyRole(roles...) {
				slog.Warn("User lacks required role",
					"username", authUser.Username,
					"requiredRoles", roles)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AdminRoleMiddleware guards the administrative surface
func AdminRoleMiddleware(next http.Handler) http.Handler {
	return RequireRole(role.AdminRoleName)(next)
}
