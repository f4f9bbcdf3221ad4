package artwork

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/infra/events"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
)

// DeleteState tracks one deletion: the row goes first, objects after.
//
//	Pending -> RowDeleted -> Cleaned
//	                      -> CleanupFailed
type DeleteState string

const (
	StatePending       DeleteState = "pending"
	StateRowDeleted    DeleteState = "row_deleted"
	StateCleaned       DeleteState = "cleaned"
	StateCleanupFailed DeleteState = "cleanup_failed"
)

var transitions = map[DeleteState][]DeleteState{
	StatePending:    {StateRowDeleted},
	StateRowDeleted: {StateCleaned, StateCleanupFailed},
}

func (s DeleteState) CanTransition(to DeleteState) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type DeleteResult struct {
	ArtworkID     string
	FamilyID      string
	State         DeleteState
	Keys          []string
	CleanupErrors []error
}

func (r *DeleteResult) advance(to DeleteState) error {
	if !r.State.CanTransition(to) {
		return fmt.Errorf("delete saga: illegal transition %s -> %s", r.State, to)
	}
	r.State = to
	return nil
}

const cleanupTimeout = 30 * time.Second

type Deleter struct {
	store     Store
	storage   ObjectStorage
	tasks     TaskRunner
	publisher Publisher
	logger    logger.Interface
}

func NewDeleter(s Store, st ObjectStorage, tr TaskRunner, pub Publisher, l logger.Interface) *Deleter {
	return &Deleter{store: s, storage: st, tasks: tr, publisher: pub, logger: l}
}

// Delete removes the artwork row, then its objects. Object cleanup is best
// effort: failures are logged and reported in the result, never returned.
func (d *Deleter) Delete(ctx context.Context, callerID, artworkID string) (*DeleteResult, error) {
	if !artworks.ValidID(artworkID) {
		return nil, errs.ErrInvalidID
	}

	a, err := d.store.GetArtwork(ctx, artworkID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, errs.NotFound("Artwork")
		}
		return nil, errs.Dependency("Failed to load artwork", err)
	}

	role, err := d.store.MemberRole(ctx, a.FamilyID, callerID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, errs.Forbidden("You do not have permission to delete this artwork")
		}
		return nil, errs.Dependency("Failed to check family membership", err)
	}
	if !families.Allowed(role, families.OpDelete) {
		return nil, errs.Forbidden("You do not have permission to delete this artwork")
	}

	res := &DeleteResult{ArtworkID: a.ID, FamilyID: a.FamilyID, State: StatePending}

	deleted, err := d.store.DeleteArtwork(ctx, a.ID)
	if err != nil {
		return nil, errs.Dependency("Failed to delete artwork", err)
	}
	if !deleted {
		// a concurrent request won
		return nil, errs.NotFound("Artwork")
	}
	if err := res.advance(StateRowDeleted); err != nil {
		return nil, err
	}

	res.Keys = d.keysFor(a)

	// the row is gone; a client disconnect must not abort cleanup
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	res.CleanupErrors = d.cleanup(cctx, res.Keys)

	next := StateCleaned
	if len(res.CleanupErrors) > 0 {
		next = StateCleanupFailed
		d.logger.Warn("ArtworkUseCase - Delete - cleanup failed artwork=%s keys=%v errors=%v", a.ID, res.Keys, res.CleanupErrors)
	}
	if err := res.advance(next); err != nil {
		return nil, err
	}

	ev := events.Event{
		Type:      events.ArtworkDeleted,
		ArtworkID: a.ID,
		FamilyID:  a.FamilyID,
		ChildID:   a.ChildID,
		UserID:    callerID,
		Keys:      res.Keys,
	}
	d.tasks.Submit("event:"+ev.Type+":"+a.ID, func(ctx context.Context) error {
		return d.publisher.Publish(ctx, ev)
	})

	return res, nil
}

func (d *Deleter) keysFor(a *artworks.Artwork) []string {
	var keys []string
	for _, raw := range []string{a.ImageURL, a.ThumbnailURL} {
		if raw == "" {
			continue
		}
		key, err := d.storage.KeyFromURL(raw)
		if err != nil {
			d.logger.Warn("ArtworkUseCase - Delete - KeyFromURL artwork=%s url=%s: %v", a.ID, raw, err)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func (d *Deleter) cleanup(ctx context.Context, keys []string) []error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		failures []error
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := d.storage.Delete(ctx, key); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Errorf("delete %s: %w", key, err))
				mu.Unlock()
			}
		}(key)
	}
	wg.Wait()

	return failures
}
