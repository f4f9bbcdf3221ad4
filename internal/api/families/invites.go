package families

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/mailer"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/securetoken"
)

func (h *Handler) inviteLink(token string) string {
	return strings.TrimRight(h.appURL, "/") + "/invite/" + token
}

// POST /api/families/:id/invites
func (h *Handler) CreateInvite(c *gin.Context) {
	familyID := c.Param("id")
	caller, _ := middleware.CurrentIdentity(c)
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, caller.UserID, families.OpInvite); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var body struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid email"})
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(body.Email))
	if err != nil {
		respond.Error(c, h.logger, errs.Invalid("Invalid email format"))
		return
	}
	role := strings.ToLower(body.Role)
	if role == "" {
		role = families.RoleMember
	}
	if !families.InvitableRole(role) {
		respond.Error(c, h.logger, errs.Invalid("role must be one of parent, member, viewer"))
		return
	}

	var f families.Family
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", familyID).First(&f).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load family", err)
		return
	}

	token, err := securetoken.New(24)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	inv := families.Invite{
		FamilyID:  familyID,
		Email:     strings.ToLower(addr.Address),
		Role:      role,
		Token:     token,
		InvitedBy: caller.UserID,
		ExpiresAt: time.Now().Add(families.InviteTTL),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&inv).Error; err != nil {
		respond.DB(c, h.logger, "Failed to create invite", err)
		return
	}

	link := h.inviteLink(token)
	inviter := caller.Email
	var u users.User
	if err := h.db.WithContext(c.Request.Context()).Select("name").Where("id = ?", caller.UserID).First(&u).Error; err == nil && u.Name != "" {
		inviter = u.Name
	}
	subject, text := mailer.InviteEmail(f.Name, inviter, link)
	h.sendLater("email:invite:"+inv.ID, inv.Email, subject, text)

	c.JSON(http.StatusCreated, gin.H{"invite": inv, "link": link})
}

// GET /api/families/:id/invites lists pending invites.
func (h *Handler) ListInvites(c *gin.Context) {
	familyID := c.Param("id")
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpInvite); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	var list []families.Invite
	if err := h.db.WithContext(c.Request.Context()).
		Where("family_id = ? AND accepted_at IS NULL AND expires_at > ?", familyID, time.Now()).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load invites", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// POST /api/invites/:token/accept
func (h *Handler) AcceptInvite(c *gin.Context) {
	caller, _ := middleware.CurrentIdentity(c)

	var inv families.Invite
	err := h.db.WithContext(c.Request.Context()).
		Preload("Family").
		Where("token = ?", c.Param("token")).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, h.logger, errs.NotFound("Invite"))
			return
		}
		respond.DB(c, h.logger, "Failed to load invite", err)
		return
	}

	if !inv.Usable(time.Now()) {
		c.JSON(http.StatusGone, gin.H{"error": "Invite expired or already used"})
		return
	}
	if !strings.EqualFold(inv.Email, caller.Email) {
		respond.Error(c, h.logger, errs.Forbidden("This invite was sent to a different email address"))
		return
	}

	if _, err := h.members.MemberRole(c.Request.Context(), inv.FamilyID, caller.UserID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this family"})
		return
	}

	now := time.Now()
	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&families.Invite{}).
			Where("id = ? AND accepted_at IS NULL", inv.ID).
			Update("accepted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.Forbidden("Invite already used")
		}
		return tx.Create(&families.FamilyMember{
			FamilyID: inv.FamilyID,
			UserID:   caller.UserID,
			Role:     inv.Role,
		}).Error
	})
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			c.JSON(http.StatusGone, gin.H{"error": "Invite expired or already used"})
			return
		}
		respond.DB(c, h.logger, "Failed to accept invite", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "family_id": inv.FamilyID, "role": inv.Role})
}
