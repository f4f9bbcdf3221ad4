package artworks

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/pkg/errs"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// GalleryFilter narrows a family gallery. Empty fields match everything.
type GalleryFilter struct {
	ChildID  string
	Tag      string
	Favorite bool
	Query    string
	Limit    int
	Offset   int
}

func filterFromQuery(c *gin.Context) (GalleryFilter, error) {
	f := GalleryFilter{
		ChildID: c.Query("childId"),
		Tag:     strings.ToLower(strings.TrimSpace(c.Query("tag"))),
		Query:   strings.TrimSpace(c.Query("q")),
		Limit:   defaultPageSize,
	}
	if f.ChildID != "" && !artworks.ValidID(f.ChildID) {
		return f, errs.Invalid("childId must be a UUID")
	}
	if v := c.Query("favorite"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errs.Invalid("favorite must be true or false")
		}
		f.Favorite = b
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, errs.Invalid("limit must be a positive number")
		}
		f.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errs.Invalid("offset must not be negative")
		}
		f.Offset = n
	}
	return f, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE substring pattern where the
// user's % and _ match literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// GET /api/families/:id/artworks
func (h *Handler) List(c *gin.Context) {
	familyID := c.Param("id")
	if _, err := guard.Family(c.Request.Context(), h.store, familyID, middleware.UserID(c), families.OpView); err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	f, err := filterFromQuery(c)
	if err != nil {
		respond.Error(c, h.logger, err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Model(&artworks.Artwork{}).
		Where("family_id = ?", familyID)
	if f.ChildID != "" {
		q = q.Where("child_id = ?", f.ChildID)
	}
	if f.Tag != "" {
		q = q.Where("(? = ANY(tags) OR ? = ANY(ai_tags))", f.Tag, f.Tag)
	}
	if f.Favorite {
		q = q.Where("is_favorite = ?", true)
	}
	if f.Query != "" {
		like := containsPattern(f.Query)
		q = q.Where(`(title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}

	var list []artworks.Artwork
	if err := q.
		Order("created_date DESC").
		Order("uploaded_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artworks": list, "total": total})
}

// load fetches the artwork and checks the caller may perform op on it.
func (h *Handler) load(c *gin.Context, op families.Operation) (*artworks.Artwork, bool) {
	id := c.Param("id")
	if !artworks.ValidID(id) {
		respond.Error(c, h.logger, errs.ErrInvalidID)
		return nil, false
	}

	a, err := h.store.GetArtwork(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			err = errs.NotFound("Artwork")
		}
		respond.Error(c, h.logger, err)
		return nil, false
	}

	if _, err := guard.Family(c.Request.Context(), h.store, a.FamilyID, middleware.UserID(c), op); err != nil {
		respond.Error(c, h.logger, err)
		return nil, false
	}
	return a, true
}

// GET /api/artworks/:id
func (h *Handler) Get(c *gin.Context) {
	a, ok := h.load(c, families.OpView)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, a)
}
