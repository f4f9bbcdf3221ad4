package artworks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/usecase/artwork"
)

// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "limit": h.maxUploadBytes})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large", "limit": tooBig.Limit})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "details": err.Error()})
		return
	}

	in := artwork.UploadInput{
		FamilyID:    c.PostForm("familyId"),
		ChildID:     c.PostForm("childId"),
		Title:       c.PostForm("title"),
		CreatedDate: c.PostForm("createdDate"),
		UserID:      c.PostForm("userId"),
		Description: c.PostForm("description"),
		Tags:        parseTags(c.PostForm("tags")),
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file", "details": err.Error()})
			return
		}
		in.File, err = io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file", "details": err.Error()})
			return
		}
	}

	a, err := h.uploader.Upload(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artwork": a})
}

// parseTags accepts a JSON array or a comma separated list.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return tags
		}
	}
	return strings.Split(raw, ",")
}
