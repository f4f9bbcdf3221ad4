package artwork

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/infra/events"
	"kidcanvas/pkg/errs"
	"kidcanvas/pkg/logger"
	"kidcanvas/pkg/sanitize"
)

const dateLayout = "2006-01-02"

type UploadInput struct {
	File        []byte
	FamilyID    string
	ChildID     string
	Title       string
	CreatedDate string
	UserID      string
	Description string
	Tags        []string
}

// Validate reports absent required fields in request order.
func (in UploadInput) Validate() error {
	var missing []string
	if len(in.File) == 0 {
		missing = append(missing, "file")
	}
	for _, f := range []struct {
		name, value string
	}{
		{"familyId", in.FamilyID},
		{"childId", in.ChildID},
		{"title", in.Title},
		{"createdDate", in.CreatedDate},
		{"userId", in.UserID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &errs.MissingFieldsError{Fields: missing}
	}
	return nil
}

func ParseCreatedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Truncate(24 * time.Hour), nil
	}
	return time.Time{}, errs.Invalid("createdDate must be YYYY-MM-DD")
}

type Uploader struct {
	store     Store
	storage   ObjectStorage
	processor ImageProcessor
	quota     *QuotaChecker
	tagger    *Tagger
	tasks     TaskRunner
	publisher Publisher
	logger    logger.Interface
}

func NewUploader(
	s Store,
	st ObjectStorage,
	p ImageProcessor,
	q *QuotaChecker,
	t *Tagger,
	tr TaskRunner,
	pub Publisher,
	l logger.Interface,
) *Uploader {
	return &Uploader{
		store:     s,
		storage:   st,
		processor: p,
		quota:     q,
		tagger:    t,
		tasks:     tr,
		publisher: pub,
		logger:    l,
	}
}

// Upload stores an artwork for callerID. Nothing touches object storage
// until validation, authorization and the quota check have passed.
func (u *Uploader) Upload(ctx context.Context, callerID string, in UploadInput) (*artworks.Artwork, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	createdDate, err := ParseCreatedDate(in.CreatedDate)
	if err != nil {
		return nil, err
	}
	if !artworks.ValidID(in.FamilyID) || !artworks.ValidID(in.ChildID) {
		return nil, errs.Invalid("familyId and childId must be UUIDs")
	}
	title := sanitize.Text(in.Title)
	if title == "" {
		return nil, errs.Invalid("title is empty after removing markup")
	}

	if in.UserID != callerID {
		return nil, errs.Forbidden("userId does not match the signed in user")
	}

	if err := u.authorize(ctx, in.FamilyID, callerID); err != nil {
		return nil, err
	}

	child, err := u.store.GetChild(ctx, in.ChildID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return nil, errs.Invalid("childId does not belong to this family")
		}
		return nil, errs.Dependency("Failed to load child", err)
	}
	if child.FamilyID != in.FamilyID {
		return nil, errs.Invalid("childId does not belong to this family")
	}

	quota, err := u.quota.Check(ctx, in.FamilyID)
	if err != nil {
		return nil, errs.Dependency("Failed to check artwork limit", err)
	}
	if quota.Exceeded() {
		return nil, &errs.QuotaError{Limit: quota.Limit, Current: quota.Current}
	}

	if err := u.storage.Ready(); err != nil {
		return nil, errs.Dependency("Storage not configured", err)
	}

	derived, err := u.processor.Derive(ctx, in.File)
	if err != nil {
		return nil, errs.Dependency("Failed to process image", err)
	}

	imageID := uuid.NewString()
	originalKey := artworks.OriginalKey(in.FamilyID, imageID, derived.OriginalExt)
	thumbKey := artworks.ThumbnailKey(in.FamilyID, imageID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return u.storage.Put(gctx, originalKey, derived.Original, derived.OriginalContentType)
	})
	g.Go(func() error {
		return u.storage.Put(gctx, thumbKey, derived.Thumbnail, "image/jpeg")
	})
	if err := g.Wait(); err != nil {
		return nil, errs.Dependency("Failed to upload image", err)
	}

	a := &artworks.Artwork{
		ID:             uuid.NewString(),
		FamilyID:       in.FamilyID,
		ChildID:        in.ChildID,
		ImageURL:       u.storage.PublicURL(originalKey),
		ThumbnailURL:   u.storage.PublicURL(thumbKey),
		Title:          title,
		CreatedDate:    createdDate,
		ChildAgeMonths: children.AgeInMonths(child.BirthDate, createdDate),
		Tags:           sanitize.Tags(in.Tags),
		AITags:         []string{},
		UploadedBy:     callerID,
	}
	if d := sanitize.Text(in.Description); d != "" {
		a.Description = &d
	}

	if err := u.store.CreateArtwork(ctx, a); err != nil {
		// objects stay; nothing references them
		u.logger.Error(err, "ArtworkUseCase - Upload - CreateArtwork, orphaned keys=%s,%s", originalKey, thumbKey)
		return nil, errs.Dependency("Failed to save artwork", err)
	}

	u.afterUpload(a, []string{originalKey, thumbKey})

	return a, nil
}

func (u *Uploader) authorize(ctx context.Context, familyID, userID string) error {
	role, err := u.store.MemberRole(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, errs.ErrRecordNotFound) {
			return errs.Forbidden("You are not a member of this family")
		}
		return errs.Dependency("Failed to check family membership", err)
	}
	if !families.Allowed(role, families.OpUpload) {
		return errs.Forbidden("Your role cannot upload artworks")
	}
	return nil
}

// afterUpload schedules best-effort work. Failures never reach the caller.
func (u *Uploader) afterUpload(a *artworks.Artwork, keys []string) {
	if u.tagger != nil && u.tagger.Enabled() {
		id := a.ID
		u.tasks.Submit("ai-tags:"+id, func(ctx context.Context) error {
			_, err := u.tagger.Tag(ctx, id)
			return err
		})
	}

	ev := events.Event{
		Type:      events.ArtworkUploaded,
		ArtworkID: a.ID,
		FamilyID:  a.FamilyID,
		ChildID:   a.ChildID,
		UserID:    a.UploadedBy,
		Keys:      keys,
	}
	u.tasks.Submit("event:"+ev.Type+":"+a.ID, func(ctx context.Context) error {
		if err := u.publisher.Publish(ctx, ev); err != nil {
			return fmt.Errorf("publish %s: %w", ev.Type, err)
		}
		return nil
	})
}
