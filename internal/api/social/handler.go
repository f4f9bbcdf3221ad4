// Package social serves reactions and comments on artworks.
package social

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
)

type Store interface {
	GetArtwork(ctx context.Context, id string) (*artworks.Artwork, error)
	MemberRole(ctx context.Context, familyID, userID string) (string, error)
}

type Handler struct {
	db     *gorm.DB
	store  Store
	logger logger.Interface
}

func New(db *gorm.DB, s Store, l logger.Interface) *Handler {
	return &Handler{db: db, store: s, logger: l}
}

// artwork loads the :id artwork and returns the caller's family role.
func (h *Handler) artwork(c *gin.Context) (*artworks.Artwork, string, bool) {
	id := c.Param("id")
	if !artworks.ValidID(id) {
		respond.Error(c, h.logger, errs.ErrInvalidID)
		return nil, "", false
	}

	a, err := h.store.GetArtwork(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			err = errs.NotFound("Artwork")
		}
		respond.Error(c, h.logger, err)
		return nil, "", false
	}

	role, err := guard.Family(c.Request.Context(), h.store, a.FamilyID, middleware.UserID(c), families.OpView)
	if err != nil {
		respond.Error(c, h.logger, err)
		return nil, "", false
	}
	return a, role, true
}
