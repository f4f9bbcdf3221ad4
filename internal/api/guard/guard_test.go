package guard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/internal/api/guard"
	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
)

const (
	family = "0d4a3a56-64c9-4c39-bf4a-2f3b3f5d1a10"
	down   = "0d4a3a56-64c9-4c39-bf4a-2f3b3f5d1a11"
)

type members map[string]string

func (m members) MemberRole(_ context.Context, familyID, userID string) (string, error) {
	if familyID == down {
		return "", errors.New("connection refused")
	}
	role, ok := m[userID]
	if !ok {
		return "", errs.ErrRecordNotFound
	}
	return role, nil
}

func TestFamily(t *testing.T) {
	m := members{"p": families.RoleParent, "v": families.RoleViewer}
	ctx := context.Background()

	role, err := guard.Family(ctx, m, family, "p", families.OpDelete)
	require.NoError(t, err)
	assert.Equal(t, families.RoleParent, role)

	_, err = guard.Family(ctx, m, family, "v", families.OpUpload)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = guard.Family(ctx, m, family, "stranger", families.OpView)
	assert.ErrorIs(t, err, errs.ErrForbidden)

	_, err = guard.Family(ctx, m, down, "p", families.OpView)
	var dep *errs.DependencyError
	assert.True(t, errors.As(err, &dep))

	_, err = guard.Family(ctx, m, "not-a-uuid", "p", families.OpView)
	assert.ErrorIs(t, err, errs.ErrInvalidID)
}

const artworkID = "5b0f4c1e-8d7e-4c49-9a53-6a1b2c3d4e5f"

// lockedFamily has an owner with no trial and no subscription.
type lockedFamily struct {
	members
}

func (lockedFamily) FamilyOwner(context.Context, string) (*users.User, error) {
	return &users.User{}, nil
}

func (lockedFamily) GetArtwork(_ context.Context, id string) (*artworks.Artwork, error) {
	if id != artworkID {
		return nil, errs.ErrRecordNotFound
	}
	return &artworks.Artwork{ID: id, FamilyID: family}, nil
}

func TestOwnerSubjectsCheckMembershipFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := lockedFamily{members{"p": families.RoleParent, "v": families.RoleViewer}}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
	})
	r.GET("/families/:id/artbook.pdf",
		middleware.RequireCapability(guard.OwnerOfFamily(s, "id", families.OpView), access.CapArtBook),
		func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/artworks/:id/ai-tags",
		middleware.RequireCapability(guard.OwnerOfArtwork(s, "id", families.OpEdit), access.CapAITags),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name      string
		user      string
		method    string
		path      string
		status    int
		planState bool
	}{
		{"outsider on art book", "stranger", http.MethodGet, "/families/" + family + "/artbook.pdf", http.StatusForbidden, false},
		{"member on art book sees plan", "p", http.MethodGet, "/families/" + family + "/artbook.pdf", http.StatusForbidden, true},
		{"outsider on ai tags", "stranger", http.MethodPost, "/artworks/" + artworkID + "/ai-tags", http.StatusForbidden, false},
		{"viewer cannot tag", "v", http.MethodPost, "/artworks/" + artworkID + "/ai-tags", http.StatusForbidden, false},
		{"member on ai tags sees plan", "p", http.MethodPost, "/artworks/" + artworkID + "/ai-tags", http.StatusForbidden, true},
		{"bad family id", "p", http.MethodGet, "/families/nope/artbook.pdf", http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("X-User", tt.user)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.planState {
				assert.Contains(t, w.Body.String(), `"state":"locked"`)
			} else {
				assert.NotContains(t, w.Body.String(), `"state"`)
				assert.NotContains(t, w.Body.String(), "capability")
			}
		})
	}
}
