// Package artworks serves upload, gallery, edit and delete endpoints.
package artworks

import (
	"context"

	"gorm.io/gorm"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/usecase/artwork"
	"kidcanvas/pkg/logger"
)

type (
	Uploader interface {
		Upload(ctx context.Context, callerID string, in artwork.UploadInput) (*artworks.Artwork, error)
	}

	Deleter interface {
		Delete(ctx context.Context, callerID, artworkID string) (*artwork.DeleteResult, error)
	}

	Tagger interface {
		Tag(ctx context.Context, artworkID string) (*artworks.Artwork, error)
	}

	Store interface {
		GetArtwork(ctx context.Context, id string) (*artworks.Artwork, error)
		MemberRole(ctx context.Context, familyID, userID string) (string, error)
	}
)

type Handler struct {
	db       *gorm.DB
	store    Store
	uploader Uploader
	deleter  Deleter
	tagger   Tagger
	logger   logger.Interface

	maxUploadBytes int64
}

type Options struct {
	DB             *gorm.DB
	Store          Store
	Uploader       Uploader
	Deleter        Deleter
	Tagger         Tagger
	Logger         logger.Interface
	MaxUploadBytes int64
}

func New(o Options) *Handler {
	return &Handler{
		db:             o.DB,
		store:          o.Store,
		uploader:       o.Uploader,
		deleter:        o.Deleter,
		tagger:         o.Tagger,
		logger:         o.Logger,
		maxUploadBytes: o.MaxUploadBytes,
	}
}
