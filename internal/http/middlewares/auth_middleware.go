package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/learnhub/internal/actorctx"
	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLookup
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth rejects a missing bearer token with 401, a bad or expired one
// with 403, and a token whose user no longer exists with 401.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		raw := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}

		if raw == "" {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Access token required")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortError(c, http.StatusForbidden, "forbidden", "Invalid or expired token")
			return
		}

		// role comes from the stored user so demotions apply immediately
		u, err := m.users.GetUserByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, user.ErrNotFound) {
			abortError(c, http.StatusUnauthorized, "unauthorized", "User not found")
			return
		}
		if err != nil {
			abortError(c, http.StatusInternalServerError, "internal_error", "Could not verify identity")
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxEmail, u.Email)
		c.Set(CtxRole, u.Role)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))

		c.Next()
	}
}

// Optional helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
