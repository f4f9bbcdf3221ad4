package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/authn"
)

const identityKey = "identity"

// Authenticate resolves the caller from a bearer token or the session cookie.
func Authenticate(r *authn.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := r.Resolve(c.Request)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, authn.ErrNoCredentials) {
				msg = "Authentication required"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(identityKey, id)
		c.Set("user_id", id.UserID)
		c.Set("email", id.Email)
		c.Set("role", id.Role)
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (authn.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return authn.Identity{}, false
	}
	id, ok := v.(authn.Identity)
	return id, ok
}

// UserID is empty for unauthenticated requests.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Role not found in token"})
			return
		}

		if value != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}

		c.Next()
	}
}
