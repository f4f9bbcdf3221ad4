package artwork

import (
	"context"
	"fmt"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
)

// Tagger fills ai_tags and ai_description for an artwork.
type Tagger struct {
	store  Store
	ai     AITagger
	logger logger.Interface
}

func NewTagger(s Store, ai AITagger, l logger.Interface) *Tagger {
	return &Tagger{store: s, ai: ai, logger: l}
}

func (t *Tagger) Enabled() bool {
	return t.ai != nil && t.ai.Enabled()
}

func (t *Tagger) Tag(ctx context.Context, artworkID string) (*artworks.Artwork, error) {
	if !t.Enabled() {
		return nil, errs.Dependency("AI tagging is not configured", nil)
	}

	a, err := t.store.GetArtwork(ctx, artworkID)
	if err != nil {
		return nil, fmt.Errorf("Tagger - Tag - GetArtwork: %w", err)
	}

	res, err := t.ai.Describe(ctx, a.ImageURL, a.Title)
	if err != nil {
		return nil, errs.Dependency("AI tagging failed", err)
	}

	if err := t.store.UpdateAITags(ctx, a.ID, res.Tags, res.Description); err != nil {
		return nil, errs.Dependency("Failed to save AI tags", err)
	}

	a.AITags = res.Tags
	if res.Description != "" {
		d := res.Description
		a.AIDescription = &d
	}

	t.logger.Debug("Tagger - Tag - artwork=%s tags=%v", a.ID, res.Tags)
	return a, nil
}
