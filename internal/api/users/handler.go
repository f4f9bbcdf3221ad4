package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/logger"
)

type Handler struct {
	db     *gorm.DB
	logger logger.Interface
}

func New(db *gorm.DB, l logger.Interface) *Handler {
	return &Handler{db: db, logger: l}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	err := h.db.WithContext(c.Request.Context()).
		Preload("Plan").
		Where("id = ?", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		respond.DB(c, h.logger, "Failed to load user", err)
		return
	}

	var familyCount int64
	if err := h.db.WithContext(c.Request.Context()).
		Table("family_members").
		Where("user_id = ?", userID).
		Count(&familyCount).Error; err != nil {
		respond.DB(c, h.logger, "Failed to count families", err)
		return
	}

	c.JSON(http.StatusOK, BuildMeResponse(time.Now(), user, familyCount))
}
