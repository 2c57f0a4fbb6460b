package middlewares

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RequireRole admits callers whose role is one of allowed. It must run
// after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}
		if !slices.Contains(allowed, role) {
			abortError(c, http.StatusForbidden, "forbidden", "Insufficient role")
			return
		}
		c.Next()
	}
}
