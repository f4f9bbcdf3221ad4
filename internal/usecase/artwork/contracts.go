package artwork

import (
	"context"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/aitag"
	"kidcanvas/internal/infra/events"
	"kidcanvas/internal/infra/imaging"
)

type (
	// Store is the relational side. Lookups return errs.ErrRecordNotFound
	// when nothing matches.
	Store interface {
		CreateArtwork(ctx context.Context, a *artworks.Artwork) error
		GetArtwork(ctx context.Context, id string) (*artworks.Artwork, error)
		// DeleteArtwork reports whether a row was removed.
		DeleteArtwork(ctx context.Context, id string) (bool, error)
		UpdateAITags(ctx context.Context, id string, tags []string, description string) error

		MemberRole(ctx context.Context, familyID, userID string) (string, error)
		GetChild(ctx context.Context, id string) (*children.Child, error)

		// FamilyOwner returns the owner with Plan loaded.
		FamilyOwner(ctx context.Context, familyID string) (*users.User, error)
		CountArtworks(ctx context.Context, familyID string) (int64, error)
	}

	ObjectStorage interface {
		Ready() error
		Put(ctx context.Context, key string, data []byte, contentType string) error
		Delete(ctx context.Context, key string) error
		PublicURL(key string) string
		KeyFromURL(raw string) (string, error)
	}

	ImageProcessor interface {
		Derive(ctx context.Context, data []byte) (*imaging.Derivatives, error)
	}

	AITagger interface {
		Enabled() bool
		Describe(ctx context.Context, imageURL, title string) (*aitag.Result, error)
	}

	TaskRunner interface {
		Submit(name string, fn func(ctx context.Context) error) bool
	}

	Publisher interface {
		Publish(ctx context.Context, e events.Event) error
	}
)
