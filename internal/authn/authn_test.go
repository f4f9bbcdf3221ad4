package authn_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/internal/authn"
	"kidcanvas/internal/domain/users"
)

const cookieName = "kidcanvas_session"

var user = users.User{ID: "11111111-1111-4111-8111-111111111111", Email: "ana@example.com", Role: users.RoleUser}

func setup(t *testing.T) (*authn.Tokens, *authn.Resolver) {
	t.Helper()
	tokens := authn.NewTokens("test-secret", time.Hour, 24*time.Hour)
	r := authn.NewResolver(
		authn.BearerTokenStrategy{Tokens: tokens},
		authn.SessionCookieStrategy{Tokens: tokens, Name: cookieName},
	)
	return tokens, r
}

func issue(t *testing.T, tokens *authn.Tokens, kind string) string {
	t.Helper()
	s, err := tokens.Issue(user, kind)
	require.NoError(t, err)
	return s
}

func TestResolveBearer(t *testing.T) {
	tokens, r := setup(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks/x", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, authn.KindAccess))

	id, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, user.Email, id.Email)
	assert.Equal(t, users.RoleUser, id.Role)
}

func TestResolveCookie(t *testing.T) {
	tokens, r := setup(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks/x", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: issue(t, tokens, authn.KindSession)})

	id, err := r.Resolve(req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
}

func TestResolveNoCredentials(t *testing.T) {
	_, r := setup(t)

	_, err := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, authn.ErrNoCredentials)
}

func TestResolveRejectsWrongKind(t *testing.T) {
	tokens, r := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: issue(t, tokens, authn.KindAccess)})

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}

func TestBadBearerDoesNotFallBackToCookie(t *testing.T) {
	tokens, r := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: issue(t, tokens, authn.KindSession)})

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}

func TestMalformedHeader(t *testing.T) {
	_, r := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	tokens := authn.NewTokens("test-secret", -time.Minute, time.Hour)
	r := authn.NewResolver(authn.BearerTokenStrategy{Tokens: tokens})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, tokens, authn.KindAccess))

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}

func TestForeignSecret(t *testing.T) {
	other := authn.NewTokens("other-secret", time.Hour, time.Hour)
	_, r := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, other, authn.KindAccess))

	_, err := r.Resolve(req)
	assert.ErrorIs(t, err, authn.ErrInvalidToken)
}
