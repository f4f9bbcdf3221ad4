// Package guard checks family membership for API handlers.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"kidcanvas/internal/app/http/middleware"
	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
)

type Members interface {
	MemberRole(ctx context.Context, familyID, userID string) (string, error)
}

// Family returns the caller's role when it allows op. Non-members get the
// same 403 as members lacking the permission.
func Family(ctx context.Context, m Members, familyID, userID string, op families.Operation) (string, error) {
	if !artworks.ValidID(familyID) {
		return "", errs.ErrInvalidID
	}

	role, err := m.MemberRole(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return "", errs.Forbidden("You are not a member of this family")
		}
		return "", errs.Dependency("Failed to check family membership", err)
	}

	if !families.Allowed(role, op) {
		return role, errs.Forbidden(fmt.Sprintf("Your role (%s) does not allow this action", role))
	}
	return role, nil
}

type Owners interface {
	Members
	FamilyOwner(ctx context.Context, familyID string) (*users.User, error)
}

type ArtworkOwners interface {
	Owners
	GetArtwork(ctx context.Context, id string) (*artworks.Artwork, error)
}

// OwnerOfFamily resolves the owner of the family named by the :param path
// segment, for plan checks. The caller must hold op in that family.
func OwnerOfFamily(s Owners, param string, op families.Operation) func(c *gin.Context) (*users.User, error) {
	return func(c *gin.Context) (*users.User, error) {
		familyID := c.Param(param)
		if _, err := Family(c.Request.Context(), s, familyID, middleware.UserID(c), op); err != nil {
			return nil, err
		}
		return familyOwner(c.Request.Context(), s, familyID)
	}
}

// OwnerOfArtwork resolves the owner of the family the :param artwork
// belongs to, after checking the caller holds op in that family.
func OwnerOfArtwork(s ArtworkOwners, param string, op families.Operation) func(c *gin.Context) (*users.User, error) {
	return func(c *gin.Context) (*users.User, error) {
		id := c.Param(param)
		if !artworks.ValidID(id) {
			return nil, errs.ErrInvalidID
		}
		a, err := s.GetArtwork(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, errs.ErrRecordNotFound) {
				return nil, errs.NotFound("Artwork")
			}
			return nil, err
		}
		if _, err := Family(c.Request.Context(), s, a.FamilyID, middleware.UserID(c), op); err != nil {
			return nil, err
		}
		return familyOwner(c.Request.Context(), s, a.FamilyID)
	}
}

func familyOwner(ctx context.Context, s Owners, familyID string) (*users.User, error) {
	u, err := s.FamilyOwner(ctx, familyID)
	if errors.Is(err, errs.ErrRecordNotFound) {
		return nil, errs.NotFound("Family")
	}
	return u, err
}
