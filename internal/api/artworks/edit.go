package artworks

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/usecase/artwork"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/sanitize"
)

type updateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	CreatedDate *string   `json:"createdDate"`
	ChildID     *string   `json:"childId"`
}

// PATCH /api/artworks/:id
func (h *Handler) Update(c *gin.Context) {
	a, ok := h.load(c, families.OpEdit)
	if !ok {
		return
	}

	var body updateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		title := sanitize.Text(*body.Title)
		if title == "" {
			respond.Error(c, h.logger, errs.Invalid("title must not be empty"))
			return
		}
		updates["title"] = title
		a.Title = title
	}
	if body.Description != nil {
		if d := sanitize.Text(*body.Description); d != "" {
			a.Description = &d
		} else {
			a.Description = nil
		}
		updates["description"] = a.Description
	}
	if body.Tags != nil {
		a.Tags = pq.StringArray(sanitize.Tags(*body.Tags))
		updates["tags"] = a.Tags
	}

	ageChanged := false
	if body.CreatedDate != nil {
		d, err := artwork.ParseCreatedDate(*body.CreatedDate)
		if err != nil {
			respond.Error(c, h.logger, err)
			return
		}
		a.CreatedDate = d
		updates["created_date"] = d
		ageChanged = true
	}
	if body.ChildID != nil && *body.ChildID != a.ChildID {
		if !artworks.ValidID(*body.ChildID) {
			respond.Error(c, h.logger, errs.Invalid("childId must be a UUID"))
			return
		}
		a.ChildID = *body.ChildID
		updates["child_id"] = a.ChildID
		ageChanged = true
	}

	if ageChanged {
		var child children.Child
		err := h.db.WithContext(c.Request.Context()).
			Where("id = ? AND family_id = ?", a.ChildID, a.FamilyID).
			First(&child).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond.Error(c, h.logger, errs.Invalid("childId does not belong to this family"))
				return
			}
			respond.DB(c, h.logger, "Failed to load child", err)
			return
		}
		a.ChildAgeMonths = children.AgeInMonths(child.BirthDate, a.CreatedDate)
		updates["child_age_months"] = a.ChildAgeMonths
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, a)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&artworks.Artwork{}).
		Where("id = ?", a.ID).
		Updates(updates).Error; err != nil {
		respond.DB(c, h.logger, "Failed to update artwork", err)
		return
	}

	c.JSON(http.StatusOK, a)
}

// POST /api/artworks/:id/favorite
func (h *Handler) ToggleFavorite(c *gin.Context) {
	a, ok := h.load(c, families.OpEdit)
	if !ok {
		return
	}

	a.IsFavorite = !a.IsFavorite
	if err := h.db.WithContext(c.Request.Context()).
		Model(&artworks.Artwork{}).
		Where("id = ?", a.ID).
		Update("is_favorite", a.IsFavorite).Error; err != nil {
		respond.DB(c, h.logger, "Failed to update favorite", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": a.ID, "is_favorite": a.IsFavorite})
}

// POST /api/artworks/:id/ai-tags runs tagging synchronously.
func (h *Handler) GenerateAITags(c *gin.Context) {
	a, ok := h.load(c, families.OpEdit)
	if !ok {
		return
	}

	tagged, err := h.tagger.Tag(c.Request.Context(), a.ID)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "artwork": tagged})
}
