package social

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/social"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/sanitize"
)

// CommentBody sanitizes and checks a comment text.
func CommentBody(raw string) (string, error) {
	body := sanitize.Text(raw)
	switch {
	case body == "":
		return "", errs.Invalid("Comment must not be empty")
	case utf8.RuneCountInString(body) > social.MaxCommentLength:
		return "", errs.Invalid("Comment must be at most %d characters", social.MaxCommentLength)
	}
	return body, nil
}

// GET /api/artworks/:id/comments, oldest first.
func (h *Handler) ListComments(c *gin.Context) {
	a, _, ok := h.artwork(c)
	if !ok {
		return
	}

	var list []social.Comment
	if err := h.db.WithContext(c.Request.Context()).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "avatar_url") }).
		Where("artwork_id = ?", a.ID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load comments", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/artworks/:id/comments
func (h *Handler) AddComment(c *gin.Context) {
	a, _, ok := h.artwork(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing comment body"})
		return
	}
	body, err := CommentBody(req.Body)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	cm := social.Comment{ArtworkID: a.ID, UserID: middleware.UserID(c), Body: body}
	if err := h.db.WithContext(c.Request.Context()).Create(&cm).Error; err != nil {
		respond.DB(c, h.logger, "Failed to add comment", err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

// DELETE /api/comments/:id. Authors may delete their own comments, owners
// and parents any comment in their family.
func (h *Handler) DeleteComment(c *gin.Context) {
	id := c.Param("id")
	if !artworks.ValidID(id) {
		respond.Error(c, h.logger, errs.ErrInvalidID)
		return
	}

	var cm social.Comment
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", id).First(&cm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, h.logger, errs.NotFound("Comment"))
			return
		}
		respond.DB(c, h.logger, "Failed to load comment", err)
		return
	}

	caller := middleware.UserID(c)
	if cm.UserID != caller {
		a, err := h.store.GetArtwork(c.Request.Context(), cm.ArtworkID)
		if err != nil {
			respond.Error(c, h.logger, err)
			return
		}
		if _, err := guard.Family(c.Request.Context(), h.store, a.FamilyID, caller, families.OpDelete); err != nil {
			respond.Error(c, h.logger, err)
			return
		}
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&social.Comment{}, "id = ?", cm.ID).Error; err != nil {
		respond.DB(c, h.logger, "Failed to delete comment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
