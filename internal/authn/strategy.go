// Package authn resolves the caller of a request from either a bearer token
// or a session cookie.
package authn

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNoCredentials means the strategy found nothing to check; the
	// resolver moves on to the next one.
	ErrNoCredentials = errors.New("no credentials")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

type Strategy interface {
	Resolve(r *http.Request) (Identity, error)
}

type BearerTokenStrategy struct {
	Tokens *Tokens
}

func (s BearerTokenStrategy) Resolve(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, ErrNoCredentials
	}

	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header || strings.TrimSpace(raw) == "" {
		return Identity{}, ErrInvalidToken
	}
	return s.Tokens.Parse(strings.TrimSpace(raw), KindAccess)
}

type SessionCookieStrategy struct {
	Tokens *Tokens
	Name   string
}

func (s SessionCookieStrategy) Resolve(r *http.Request) (Identity, error) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return Identity{}, ErrNoCredentials
	}
	return s.Tokens.Parse(c.Value, KindSession)
}

// Resolver tries strategies in order. The first one that finds credentials
// decides: a bad token is not retried with the next strategy.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

func (r *Resolver) Resolve(req *http.Request) (Identity, error) {
	for _, s := range r.strategies {
		id, err := s.Resolve(req)
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		return id, err
	}
	return Identity{}, ErrNoCredentials
}
