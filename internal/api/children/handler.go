// Package children serves the child profile endpoints of a family.
package children

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
	"kidcanvas/pkg/sanitize"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Members interface {
	MemberRole(ctx context.Context, familyID, userID string) (string, error)
}

type Handler struct {
	db      *gorm.DB
	members Members
	logger  logger.Interface
}

func New(db *gorm.DB, m Members, l logger.Interface) *Handler {
	return &Handler{db: db, members: m, logger: l}
}

type childRequest struct {
	Name      *string `json:"name"`
	BirthDate *string `json:"birthDate"`
	Color     *string `json:"color"`
}

// apply copies request fields onto ch. Validation errors are *errs.ValidationError.
func (r childRequest) apply(ch *children.Child) error {
	if r.Name != nil {
		name := sanitize.Text(*r.Name)
		if name == "" {
			return errs.Invalid("name must not be empty")
		}
		ch.Name = name
	}
	if r.BirthDate != nil {
		if *r.BirthDate == "" {
			ch.BirthDate = nil
		} else {
			d, err := time.Parse("2006-01-02", *r.BirthDate)
			if err != nil {
				return errs.Invalid("birthDate must be YYYY-MM-DD")
			}
			if d.After(time.Now()) {
				return errs.Invalid("birthDate is in the future")
			}
			ch.BirthDate = &d
		}
	}
	if r.Color != nil {
		if *r.Color != "" && !colorPattern.MatchString(*r.Color) {
			return errs.Invalid("color must look like #a1b2c3")
		}
		ch.Color = strings.ToLower(*r.Color)
	}
	return nil
}

// GET /api/families/:id/children
func (h *Handler) List(c *gin.Context) {
	familyID := c.Param("id")
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpView); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var list []children.Child
	if err := h.db.WithContext(c.Request.Context()).
		Where("family_id = ?", familyID).
		Order("birth_date ASC NULLS LAST").
		Order("name ASC").
		Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load children", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/families/:id/children
func (h *Handler) Create(c *gin.Context) {
	familyID := c.Param("id")
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpManageChildren); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var body childRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "fields": []string{"name"}})
		return
	}

	ch := children.Child{FamilyID: familyID}
	if err := body.apply(&ch); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&ch).Error; err != nil {
		respond.DB(c, h.logger, "Failed to create child", err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) load(c *gin.Context) (*children.Child, bool) {
	id := c.Param("id")
	if !artworks.ValidID(id) {
		respond.Error(c, h.logger, errs.ErrInvalidID)
		return nil, false
	}

	var ch children.Child
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", id).First(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, h.logger, errs.NotFound("Child"))
			return nil, false
		}
		respond.DB(c, h.logger, "Failed to load child", err)
		return nil, false
	}

	if _, err := guard.Family(c.Request.Context(), h.members, ch.FamilyID, middleware.UserID(c), families.OpManageChildren); err != nil {
		respond.Error(c, h.logger, err)
		return nil, false
	}
	return &ch, true
}

// PATCH /api/children/:id. A changed birth date also refreshes the stored
// age of that child's artworks.
func (h *Handler) Update(c *gin.Context) {
	ch, ok := h.load(c)
	if !ok {
		return
	}

	var body childRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := body.apply(ch); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ch).Error; err != nil {
			return err
		}
		if body.BirthDate == nil {
			return nil
		}
		return refreshAges(tx, ch)
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to update child", err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

func refreshAges(tx *gorm.DB, ch *children.Child) error {
	var list []artworks.Artwork
	if err := tx.Select("id", "created_date").Where("child_id = ?", ch.ID).Find(&list).Error; err != nil {
		return err
	}
	for _, a := range list {
		age := children.AgeInMonths(ch.BirthDate, a.CreatedDate)
		if err := tx.Model(&artworks.Artwork{}).Where("id = ?", a.ID).Update("child_age_months", age).Error; err != nil {
			return err
		}
	}
	return nil
}

// DELETE /api/children/:id. Children with artworks are kept.
func (h *Handler) Delete(c *gin.Context) {
	ch, ok := h.load(c)
	if !ok {
		return
	}

	var n int64
	if err := h.db.WithContext(c.Request.Context()).Model(&artworks.Artwork{}).Where("child_id = ?", ch.ID).Count(&n).Error; err != nil {
		respond.DB(c, h.logger, "Failed to check artworks", err)
		return
	}
	if n > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Delete or move this child's artworks first", "artworks": n})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&children.Child{}, "id = ?", ch.ID).Error; err != nil {
		respond.DB(c, h.logger, "Failed to delete child", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
