package artworks

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
)

// DELETE /api/artworks/:id
func (h *Handler) Delete(c *gin.Context) {
	res, err := h.deleter.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	h.logger.Info("ArtworkHandler - Delete - artwork=%s state=%s", res.ArtworkID, res.State)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
