package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/billing"
)

// GET /payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payments := []billing.Payment{}
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load payments", err)
		return
	}

	c.JSON(http.StatusOK, payments)
}
