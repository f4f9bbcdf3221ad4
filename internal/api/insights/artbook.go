package insights

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"kidcanvas/internal/api/respond"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/infra/artbook"
)

const (
	maxBookPages  = 200
	fetchParallel = 4
)

// GET /api/families/:id/artbook.pdf?childId=&favorites=true
func (h *Handler) ArtBook(c *gin.Context) {
	familyID, kids, ok := h.family(c)
	if !ok {
		return
	}

	var f families.Family
	if err := h.db.WithContext(c.Request.Context()).Where("id = ?", familyID).First(&f).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load family", err)
		return
	}

	q := h.db.WithContext(c.Request.Context()).
		Where("family_id = ?", familyID).
		Order("created_date ASC").
		Limit(maxBookPages)
	if childID := c.Query("childId"); childID != "" {
		if !artworks.ValidID(childID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "childId must be a UUID"})
			return
		}
		q = q.Where("child_id = ?", childID)
	}
	if c.Query("favorites") == "true" {
		q = q.Where("is_favorite = ?", true)
	}

	var list []artworks.Artwork
	if err := q.Find(&list).Error; err != nil {
		respond.DB(c, h.logger, "Failed to load artworks", err)
		return
	}

	names := make(map[string]string, len(kids))
	for _, k := range kids {
		names[k.ID] = k.Name
	}

	pages := make([]artbook.Page, len(list))
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(fetchParallel)
	for i, a := range list {
		i, a := i, a
		pages[i] = artbook.Page{Title: a.Title, Caption: Caption(a, names[a.ChildID])}
		g.Go(func() error {
			key, err := h.objects.KeyFromURL(a.ImageURL)
			if err != nil {
				h.logger.Warn("InsightsHandler - ArtBook - artwork=%s: %v", a.ID, err)
				return nil
			}
			data, err := h.objects.Get(ctx, key)
			if err != nil {
				// the page gets a placeholder
				h.logger.Warn("InsightsHandler - ArtBook - fetch %s: %v", key, err)
				return nil
			}
			pages[i].Image = data
			return nil
		})
	}
	_ = g.Wait()

	var buf bytes.Buffer
	err := artbook.Render(&buf, artbook.Book{
		Title:    f.Name,
		Subtitle: fmt.Sprintf("%d artworks · %s", len(list), time.Now().Format("January 2006")),
		Pages:    pages,
	})
	if err != nil {
		respond.DB(c, h.logger, "Failed to render art book", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-artbook.pdf"`, families.Slug(f.Name)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// Caption is "Child, age · Month Year" with unknown parts left out.
func Caption(a artworks.Artwork, childName string) string {
	var who []string
	if childName != "" {
		who = append(who, childName)
	}
	if a.ChildAgeMonths != nil {
		who = append(who, ageText(*a.ChildAgeMonths))
	}

	date := a.CreatedDate.Format("January 2006")
	if len(who) == 0 {
		return date
	}
	return strings.Join(who, ", ") + " · " + date
}

func ageText(months int) string {
	switch {
	case months < 24:
		if months == 1 {
			return "1 month"
		}
		return fmt.Sprintf("%d months", months)
	default:
		return fmt.Sprintf("%d years", months/12)
	}
}

