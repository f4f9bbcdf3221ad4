// Package insights serves the timeline, analytics, feed and art book views
// of a family.
package insights

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/insights"
	"kidcanvas/internal/domain/social"
	"kidcanvas/pkg/logger"
)

const feedSize = 50

type (
	Members interface {
		MemberRole(ctx context.Context, familyID, userID string) (string, error)
	}

	Objects interface {
		Get(ctx context.Context, key string) ([]byte, error)
		KeyFromURL(raw string) (string, error)
	}
)

type Handler struct {
	db      *gorm.DB
	members Members
	objects Objects
	logger  logger.Interface
}

func New(db *gorm.DB, m Members, o Objects, l logger.Interface) *Handler {
	return &Handler{db: db, members: m, objects: o, logger: l}
}

// family checks view access and loads the family's children.
func (h *Handler) family(c *gin.Context) (string, []children.Child, bool) {
	familyID := c.Param("id")
	if _, err := guard.Family(c.Request.Context(), h.members, familyID, middleware.UserID(c), families.OpView); err != nil {
		respond.Error(c, h.logger, err)
		return "", nil, false
	}

	var kids []children.Child
	if err := h.db.WithContext(c.Request.Context()).
		Where("family_id = ?", familyID).
		Order("name ASC").
		Find(&kids).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load children", err)
		return "", nil, false
	}
	return familyID, kids, true
}

func (h *Handler) artworks(c *gin.Context, familyID string, limit int) ([]artworks.Artwork, error) {
	q := h.db.WithContext(c.Request.Context()).
		Where("family_id = ?", familyID).
		Order("created_date DESC").
		Order("uploaded_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []artworks.Artwork
	return list, q.Find(&list).Error
}

func (h *Handler) reactions(c *gin.Context, familyID string, artworkIDs []string) ([]social.Reaction, error) {
	q := h.db.WithContext(c.Request.Context()).Model(&social.Reaction{})
	if artworkIDs != nil {
		if len(artworkIDs) == 0 {
			return nil, nil
		}
		q = q.Where("artwork_id IN ?", artworkIDs)
	} else {
		q = q.Where("artwork_id IN (?)", h.db.Model(&artworks.Artwork{}).Select("id").Where("family_id = ?", familyID))
	}
	var list []social.Reaction
	return list, q.Find(&list).Error
}

// GET /api/families/:id/timeline
func (h *Handler) Timeline(c *gin.Context) {
	familyID, kids, ok := h.family(c)
	if !ok {
		return
	}

	list, err := h.artworks(c, familyID, 0)
	if err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}

	c.JSON(http.StatusOK, insights.BuildTimeline(list, kids))
}

// GET /api/families/:id/analytics
func (h *Handler) Analytics(c *gin.Context) {
	familyID, kids, ok := h.family(c)
	if !ok {
		return
	}

	list, err := h.artworks(c, familyID, 0)
	if err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}
	reactions, err := h.reactions(c, familyID, nil)
	if err != nil {
		respond.DB(c, h.logger, "Failed to load reactions", err)
		return
	}

	c.JSON(http.StatusOK, insights.BuildAnalytics(list, kids, reactions))
}

// GET /api/families/:id/feed
func (h *Handler) Feed(c *gin.Context) {
	familyID, kids, ok := h.family(c)
	if !ok {
		return
	}

	var list []artworks.Artwork
	if err := h.db.WithContext(c.Request.Context()).
		Where("family_id = ?", familyID).
		Order("uploaded_at DESC").
		Limit(feedSize).
		Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}

	ids := make([]string, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}

	reactions, err := h.reactions(c, familyID, ids)
	if err != nil {
		respond.DB(c, h.logger, "Failed to load reactions", err)
		return
	}

	counts := map[string]int{}
	if len(ids) > 0 {
		var rows []struct {
			ArtworkID string
			N         int
		}
		if err := h.db.WithContext(c.Request.Context()).
			Model(&social.Comment{}).
			Select("artwork_id, COUNT(*) AS n").
			Where("artwork_id IN ?", ids).
			Group("artwork_id").
			Scan(&rows).Error; err != nil {
			respond.DB(c, h.logger, "Failed to count comments", err)
			return
		}
		for _, r := range rows {
			counts[r.ArtworkID] = r.N
		}
	}

	c.JSON(http.StatusOK, insights.BuildFeed(list, kids, reactions, counts, middleware.UserID(c)))
}
