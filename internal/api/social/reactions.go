package social

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/social"
	"kidcanvas/pkg/errs"
)

func (h *Handler) counts(c *gin.Context, artworkID string) (map[string]int, error) {
	var rows []struct {
		Emoji string
		N     int
	}
	err := h.db.WithContext(c.Request.Context()).
		Model(&social.Reaction{}).
		Select("emoji, COUNT(*) AS n").
		Where("artwork_id = ?", artworkID).
		Group("emoji").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(social.Emojis))
	for _, e := range social.Emojis {
		out[e] = 0
	}
	for _, r := range rows {
		out[r.Emoji] = r.N
	}
	return out, nil
}

// POST /api/artworks/:id/reactions. Adding an existing reaction is a no-op.
func (h *Handler) AddReaction(c *gin.Context) {
	a, _, ok := h.artwork(c)
	if !ok {
		return
	}

	var body struct {
		Emoji string `json:"emoji" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing emoji"})
		return
	}
	emoji := strings.ToLower(strings.TrimSpace(body.Emoji))
	if !social.ValidEmoji(emoji) {
		respond.Error(c, h.logger, errs.Invalid("emoji must be one of %s", strings.Join(social.Emojis, ", ")))
		return
	}

	r := social.Reaction{ArtworkID: a.ID, UserID: middleware.UserID(c), Emoji: emoji}
	if err := h.db.WithContext(c.Request.Context()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&r).Error; err != nil {
		respond.DB(c, h.logger, "Failed to add reaction", err)
		return
	}

	counts, err := h.counts(c, a.ID)
	if err != nil {
		respond.DB(c, h.logger, "Failed to count reactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": counts})
}

// DELETE /api/artworks/:id/reactions/:emoji
func (h *Handler) RemoveReaction(c *gin.Context) {
	a, _, ok := h.artwork(c)
	if !ok {
		return
	}

	emoji := c.Param("emoji")
	if !social.ValidEmoji(emoji) {
		respond.Error(c, h.logger, errs.Invalid("emoji must be one of %s", strings.Join(social.Emojis, ", ")))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Where("artwork_id = ? AND user_id = ? AND emoji = ?", a.ID, middleware.UserID(c), emoji).
		Delete(&social.Reaction{}).Error; err != nil {
		respond.DB(c, h.logger, "Failed to remove reaction", err)
		return
	}

	counts, err := h.counts(c, a.ID)
	if err != nil {
		respond.DB(c, h.logger, "Failed to count reactions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reactions": counts})
}
