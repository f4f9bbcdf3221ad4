package families

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/families"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/sanitize"
)

type familyDTO struct {
	families.Family
	MyRole string `json:"my_role"`
}

// POST /api/families
func (h *Handler) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid name"})
		return
	}
	name := sanitize.Text(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid name"})
		return
	}

	userID := middleware.UserID(c)
	f := families.Family{Name: name, OwnerID: userID}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&f).Error; err != nil {
			return err
		}
		return tx.Create(&families.FamilyMember{
			FamilyID: f.ID,
			UserID:   userID,
			Role:     families.RoleOwner,
		}).Error
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to create family", err)
		return
	}

	c.JSON(http.StatusCreated, familyDTO{Family: f, MyRole: families.RoleOwner})
}

// GET /api/families
func (h *Handler) ListMine(c *gin.Context) {
	var rows []struct {
		families.Family
		Role string
	}
	err := h.db.WithContext(c.Request.Context()).
		Table("families").
		Select("families.*, family_members.role AS role").
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", middleware.UserID(c)).
		Order("families.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		respond.DB(c, h.logger, "Failed to load families", err)
		return
	}

	out := make([]familyDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, familyDTO{Family: r.Family, MyRole: r.Role})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/families/:id
func (h *Handler) Get(c *gin.Context) {
	familyID := c.Param("id")
	role, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpView)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var f families.Family
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Preload("Members.User").
		Where("id = ?", familyID).
		First(&f).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load family", err)
		return
	}

	c.JSON(http.StatusOK, familyDTO{Family: f, MyRole: role})
}

// PATCH /api/families/:id/members/:userId
func (h *Handler) UpdateMember(c *gin.Context) {
	familyID, target := c.Param("id"), c.Param("userId")
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpManageMembers); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing role"})
		return
	}
	role := strings.ToLower(body.Role)
	if !families.InvitableRole(role) {
		respond.Error(c, h.logger, errs.Invalid("role must be one of parent, member, viewer"))
		return
	}

	current, err := h.members.MemberRole(c.Request.Context(), familyID, target)
	if err != nil {
		respond.Error(c, h.logger, errs.NotFound("Member"))
		return
	}
	if current == families.RoleOwner {
		respond.Error(c, h.logger, errs.Forbidden("The owner's role cannot be changed"))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&families.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, target).
		Update("role", role).Error; err != nil {
		respond.DB(c, h.logger, "Failed to update member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"family_id": familyID, "user_id": target, "role": role})
}

// DELETE /api/families/:id/members/:userId removes a member. Members may
// also remove themselves.
func (h *Handler) RemoveMember(c *gin.Context) {
	familyID, target := c.Param("id"), c.Param("userId")
	caller := middleware.UserID(c)

	op := families.OpManageMembers
	if target == caller {
		op = families.OpView
	}
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, caller, op); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	current, err := h.members.MemberRole(c.Request.Context(), familyID, target)
	if err != nil {
		respond.Error(c, h.logger, errs.NotFound("Member"))
		return
	}
	if current == families.RoleOwner {
		respond.Error(c, h.logger, errs.Forbidden("The owner cannot be removed"))
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Where("family_id = ? AND user_id = ?", familyID, target).
		Delete(&families.FamilyMember{}).Error; err != nil {
		respond.DB(c, h.logger, "Failed to remove member", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
