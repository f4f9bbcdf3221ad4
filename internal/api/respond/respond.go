// Package respond maps use case errors onto the API's JSON error shape.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
)

// Error writes err as {"error", "details"?} with the matching status.
// Unknown errors are logged and reported as 500.
func Error(c *gin.Context, l logger.Interface, err error) {
	var (
		missing *errs.MissingFieldsError
		invalid *errs.ValidationError
		quota   *errs.QuotaError
		forbid  *errs.ForbiddenError
		notFnd  *errs.NotFoundError
		dep     *errs.DependencyError
	)

	switch {
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing required fields",
			"fields":  missing.Fields,
			"details": missing.Error(),
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Message})
	case errors.Is(err, errs.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
	case errors.As(err, &quota):
		c.JSON(http.StatusForbidden, gin.H{
			"error":        "Artwork limit reached",
			"limitReached": true,
			"limit":        quota.Limit,
			"current":      quota.Current,
		})
	case errors.As(err, &forbid):
		c.JSON(http.StatusForbidden, gin.H{"error": forbid.Message})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.As(err, &notFnd):
		c.JSON(http.StatusNotFound, gin.H{"error": notFnd.Error()})
	case errors.Is(err, errs.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &dep):
		l.Error(err, "http - %s %s", c.Request.Method, c.FullPath())
		body := gin.H{"error": dep.Message}
		if dep.Err != nil {
			body["details"] = dep.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		l.Error(err, "http - %s %s", c.Request.Method, c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
	}
}

// DB reports a gorm failure the same way handlers always did.
func DB(c *gin.Context, l logger.Interface, message string, err error) {
	Error(c, l, errs.Dependency(message, err))
}
