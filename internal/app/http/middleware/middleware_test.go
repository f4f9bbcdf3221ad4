package middleware_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/authn"
	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthenticate(t *testing.T) {
	tokens := authn.NewTokens("secret", time.Hour, time.Hour)
	resolver := authn.NewResolver(
		authn.BearerTokenStrategy{Tokens: tokens},
		authn.SessionCookieStrategy{Tokens: tokens, Name: "sid"},
	)

	r := gin.New()
	r.GET("/me", middleware.Authenticate(resolver), func(c *gin.Context) {
		id, ok := middleware.CurrentIdentity(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.UserID+"|"+middleware.UserID(c))
	})

	token, err := tokens.Issue(users.User{ID: "u-1", Email: "a@b.c", Role: users.RoleUser}, authn.KindAccess)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"bearer", "Bearer " + token, http.StatusOK, "u-1|u-1"},
		{"none", "", http.StatusUnauthorized, "Authentication required"},
		{"garbage", "Bearer nope", http.StatusUnauthorized, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) { c.Set("role", "user") }, middleware.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapability(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	sub, status := "sub_1", "active"

	tests := []struct {
		name   string
		user   *users.User
		err    error
		status int
	}{
		{"trial has art book", &users.User{TrialEndAt: &future}, nil, http.StatusOK},
		{"premium has art book", &users.User{SubscriptionId: &sub, StripeSubscriptionStatus: &status, Plan: &plans.Plan{Tier: plans.TierPremium}}, nil, http.StatusOK},
		{"family lacks art book", &users.User{SubscriptionId: &sub, StripeSubscriptionStatus: &status, Plan: &plans.Plan{Tier: plans.TierFamily}}, nil, http.StatusForbidden},
		{"locked", &users.User{}, nil, http.StatusForbidden},
		{"missing family", nil, errs.NotFound("Family"), http.StatusNotFound},
		{"not a member", nil, errs.Forbidden("You are not a member of this family"), http.StatusForbidden},
		{"bad id", nil, errs.ErrInvalidID, http.StatusBadRequest},
		{"db down", nil, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject := func(*gin.Context) (*users.User, error) { return tt.user, tt.err }

			r := gin.New()
			r.GET("/book", middleware.RequireCapability(subject, access.CapArtBook), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/book", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSanitizeJSONInput(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SanitizeJSONInput())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})

	send := func(body, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(`{"title":"<b>Sun</b>","tags":["<i>sky</i>"],"meta":{"note":"<script>x</script>hi"},"n":3}`, "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"title":"Sun","tags":["sky"],"meta":{"note":"hi"},"n":3}`, w.Body.String())

	w = send(`{"title":`, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(`<b>raw</b>`, "text/plain")
	assert.Equal(t, `<b>raw</b>`, w.Body.String())
}
