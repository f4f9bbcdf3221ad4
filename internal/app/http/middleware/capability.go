package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
)

// SubjectFunc picks the account whose plan decides a capability, usually
// the owner of the family the route works on. A forbidden error ends the
// request with a plain 403 that carries no plan state.
type SubjectFunc func(c *gin.Context) (*users.User, error)

func RequireCapability(subject SubjectFunc, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := subject(c)
		if err != nil {
			switch {
			case errors.Is(err, errs.ErrInvalidID):
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
				return
			case errors.Is(err, errs.ErrForbidden):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
				return
			case errors.Is(err, errs.ErrRecordNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan", "details": err.Error()})
			return
		}

		policy := access.ComputePolicy(time.Now(), *u)
		if !policy.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Your plan does not include this feature",
				"capability": capability,
				"state":      policy.State,
			})
			return
		}

		c.Next()
	}
}
