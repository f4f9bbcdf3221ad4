package artwork_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/infra/events"
	"kidcanvas/internal/usecase/artwork"
	"kidcanvas/pkg/errs"
)

const artworkID = "9b2f6b1e-8b65-4a53-9d7e-6c0c0a8f2e11"

func seedArtwork(e *env) (origKey, thumbKey string) {
	imageID := "7f1c2d3e-4b5a-4c6d-8e9f-0a1b2c3d4e5f"
	origKey = artworks.OriginalKey(familyID, imageID, "jpg")
	thumbKey = artworks.ThumbnailKey(familyID, imageID)

	e.storage.Objects[origKey] = []byte("o")
	e.storage.Objects[thumbKey] = []byte("t")
	e.store.Artworks[artworkID] = &artworks.Artwork{
		ID:           artworkID,
		FamilyID:     familyID,
		ChildID:      childID,
		ImageURL:     e.storage.PublicURL(origKey),
		ThumbnailURL: e.storage.PublicURL(thumbKey),
	}
	return origKey, thumbKey
}

func TestDeleteRowThenObjects(t *testing.T) {
	e := newEnv(t)
	origKey, thumbKey := seedArtwork(e)

	res, err := e.deleter.Delete(context.Background(), parentID, artworkID)
	require.NoError(t, err)

	assert.Equal(t, artwork.StateCleaned, res.State)
	assert.ElementsMatch(t, []string{origKey, thumbKey}, res.Keys)
	assert.Empty(t, e.storage.Objects)
	assert.NotContains(t, e.store.Artworks, artworkID)

	assert.Equal(t, []string{"db.get", "db.delete", "storage.delete", "storage.delete"}, e.journal.Calls())

	e.tasks.Run(context.Background())
	require.Len(t, e.publisher.Events, 1)
	assert.Equal(t, events.ArtworkDeleted, e.publisher.Events[0].Type)
}

func TestDeleteInvalidID(t *testing.T) {
	e := newEnv(t)

	for _, id := range []string{"", "123", "not-a-uuid", artworkID + "0"} {
		_, err := e.deleter.Delete(context.Background(), ownerID, id)
		assert.ErrorIs(t, err, errs.ErrInvalidID, id)
	}
	assert.Empty(t, e.journal.Calls())
}

func TestDeleteNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.deleter.Delete(context.Background(), ownerID, artworkID)
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
	assert.Equal(t, "Artwork not found", err.Error())
}

func TestDeleteRequiresOwnerOrParent(t *testing.T) {
	for _, caller := range []string{memberID, viewerID, outsider} {
		e := newEnv(t)
		seedArtwork(e)

		_, err := e.deleter.Delete(context.Background(), caller, artworkID)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.Contains(t, e.store.Artworks, artworkID, "row must be untouched")
		assert.Zero(t, e.storage.Deletes)
		assert.NotContains(t, e.journal.Calls(), "db.delete")
	}
}

func TestDeleteDatabaseFailureLeavesStorage(t *testing.T) {
	e := newEnv(t)
	seedArtwork(e)
	e.store.DeleteErr = errors.New("deadlock detected")

	_, err := e.deleter.Delete(context.Background(), ownerID, artworkID)

	var dep *errs.DependencyError
	require.True(t, errors.As(err, &dep))
	assert.Zero(t, e.storage.Deletes)
	assert.Len(t, e.storage.Objects, 2)
}

func TestDeleteStorageFailureStillSucceeds(t *testing.T) {
	e := newEnv(t)
	seedArtwork(e)
	e.storage.DeleteErr = errors.New("access denied")

	res, err := e.deleter.Delete(context.Background(), ownerID, artworkID)
	require.NoError(t, err)

	assert.Equal(t, artwork.StateCleanupFailed, res.State)
	assert.Len(t, res.CleanupErrors, 2)
	assert.NotContains(t, e.store.Artworks, artworkID)
	assert.Equal(t, 2, e.storage.Deletes)
}

func TestDeleteConcurrentDuplicates(t *testing.T) {
	e := newEnv(t)
	seedArtwork(e)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.deleter.Delete(context.Background(), ownerID, artworkID)
		}(i)
	}
	wg.Wait()

	var ok, notFound int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrRecordNotFound):
			notFound++
			assert.Equal(t, "Artwork not found", err.Error())
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, notFound)
}

func TestDeleteStateTransitions(t *testing.T) {
	assert.True(t, artwork.StatePending.CanTransition(artwork.StateRowDeleted))
	assert.True(t, artwork.StateRowDeleted.CanTransition(artwork.StateCleaned))
	assert.True(t, artwork.StateRowDeleted.CanTransition(artwork.StateCleanupFailed))

	assert.False(t, artwork.StatePending.CanTransition(artwork.StateCleaned))
	assert.False(t, artwork.StateCleaned.CanTransition(artwork.StatePending))
	assert.False(t, artwork.StateCleanupFailed.CanTransition(artwork.StateCleaned))
}
