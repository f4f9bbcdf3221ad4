package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kidcanvas/internal/domain/users"
)

// Token kinds. Bearer tokens are "access", the web cookie carries "session".
const (
	KindAccess  = "access"
	KindSession = "session"
)

type Identity struct {
	UserID string
	Email  string
	Role   string
}

type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	sessionTTL time.Duration
	now        func() time.Time
}

func NewTokens(secret string, accessTTL, sessionTTL time.Duration) *Tokens {
	return &Tokens{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (t *Tokens) SessionTTL() time.Duration { return t.sessionTTL }

func (t *Tokens) Issue(u users.User, kind string) (string, error) {
	ttl := t.accessTTL
	if kind == KindSession {
		ttl = t.sessionTTL
	}

	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
		"kind":    kind,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})

	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("Tokens - Issue: %w", err)
	}
	return s, nil
}

// Parse validates signature, expiry and kind.
func (t *Tokens) Parse(raw, kind string) (Identity, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	if k, _ := claims["kind"].(string); k != kind {
		return Identity{}, fmt.Errorf("%w: expected %s token", ErrInvalidToken, kind)
	}

	id := Identity{}
	id.UserID, _ = claims["user_id"].(string)
	id.Email, _ = claims["email"].(string)
	id.Role, _ = claims["role"].(string)
	if id.UserID == "" {
		return Identity{}, errors.Join(ErrInvalidToken, errors.New("missing user_id"))
	}
	return id, nil
}
