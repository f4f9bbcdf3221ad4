package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/config"
	"kidcanvas/internal/authn"
	"kidcanvas/pkg/logger"
)

type nopTasks struct{}

func (nopTasks) Submit(string, func(context.Context) error) bool { return true }

type nopMailer struct{}

func (nopMailer) Send(string, string, string) error { return nil }

func testHandler(google config.Google) *Handler {
	cfg := &config.Config{
		Auth:   config.Auth{JWTSecret: "secret", CookieName: "kidcanvas_session", SessionTTL: time.Hour, TokenTTL: time.Hour, TrialDays: 14},
		Google: google,
		HTTP:   config.HTTP{AppURL: "http://app.test", APIURL: "http://api.test"},
	}
	tokens := authn.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.SessionTTL)
	return New(nil, tokens, cfg, nopMailer{}, nopTasks{}, logger.Nop())
}

func TestIsPasswordStrong(t *testing.T) {
	assert.True(t, isPasswordStrong("crayons42"))
	assert.False(t, isPasswordStrong("short1"))
	assert.False(t, isPasswordStrong("onlyletters"))
	assert.False(t, isPasswordStrong("1234567890"))
}

func TestIsEmailValid(t *testing.T) {
	assert.True(t, isEmailValid("parent@example.com"))
	assert.False(t, isEmailValid("parent@localhost"))
	assert.False(t, isEmailValid("Parent <parent@example.com>"))
	assert.False(t, isEmailValid("not-an-email"))
}

func TestRegisterRejectsBeforeDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(config.Google{})
	r := gin.New()
	r.POST("/register", h.Register)

	for name, body := range map[string]string{
		"malformed":     `{`,
		"missing name":  `{"email":"a@example.com","password":"crayons42"}`,
		"bad email":     `{"name":"A","email":"nope","password":"crayons42"}`,
		"weak password": `{"name":"A","email":"a@example.com","password":"abc"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(config.Google{})
	r := gin.New()
	r.POST("/logout", h.Logout)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "kidcanvas_session=;")
	assert.Contains(t, cookie, "Max-Age=0")
	assert.Contains(t, cookie, "HttpOnly")
}

func TestGoogleStartDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(config.Google{})
	r := gin.New()
	r.GET("/auth/google", h.GoogleStart)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoogleStartRedirectsWithState(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(config.Google{ClientID: "client", ClientSecret: "shh", RedirectURL: "http://api.test/auth/google/callback"})
	r := gin.New()
	r.GET("/auth/google", h.GoogleStart)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "https://accounts.google.com/"))
	assert.Contains(t, loc, "client_id=client")
	assert.Contains(t, w.Header().Get("Set-Cookie"), stateCookie+"=")
}

func TestGoogleCallbackRejectsStateMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHandler(config.Google{ClientID: "client", ClientSecret: "shh", RedirectURL: "http://api.test/cb"})
	r := gin.New()
	r.GET("/auth/google/callback", h.GoogleCallback)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "other"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleClaimsRequireVerifiedEmail(t *testing.T) {
	tests := []struct {
		name   string
		claims googleIDClaims
		err    string
	}{
		{"verified", googleIDClaims{Sub: "1", Email: "ana@example.com", EmailVerified: true}, ""},
		{"unverified email", googleIDClaims{Sub: "1", Email: "ana@example.com"}, errGoogleEmail},
		{"missing email", googleIDClaims{Sub: "1", EmailVerified: true}, errGoogleClaims},
		{"missing subject", googleIDClaims{Email: "ana@example.com", EmailVerified: true}, errGoogleClaims},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.claims.validate()
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.err)
		})
	}
}
