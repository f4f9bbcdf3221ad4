// Package pgstore is the gorm-backed store used by the artwork use cases.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/children"
	"kidcanvas/internal/domain/families"
	"kidcanvas/internal/domain/social"
	"kidcanvas/internal/domain/users"
	"kidcanvas/pkg/errs"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrRecordNotFound
	}
	return err
}

func (s *Store) CreateArtwork(ctx context.Context, a *artworks.Artwork) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("Store - CreateArtwork: %w", err)
	}
	return nil
}

func (s *Store) GetArtwork(ctx context.Context, id string) (*artworks.Artwork, error) {
	var a artworks.Artwork
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, fmt.Errorf("Store - GetArtwork: %w", notFound(err))
	}
	return &a, nil
}

// DeleteArtwork relies on RowsAffected so that of two racing deletes only one
// reports true. Reactions and comments are removed in the same transaction.
func (s *Store) DeleteArtwork(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ?", id).Delete(&social.Reaction{}).Error; err != nil {
			return fmt.Errorf("reactions: %w", err)
		}
		if err := tx.Where("artwork_id = ?", id).Delete(&social.Comment{}).Error; err != nil {
			return fmt.Errorf("comments: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&artworks.Artwork{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("Store - DeleteArtwork: %w", err)
	}
	return deleted, nil
}

func (s *Store) UpdateAITags(ctx context.Context, id string, tags []string, description string) error {
	res := s.db.WithContext(ctx).
		Model(&artworks.Artwork{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_tags":        pq.StringArray(tags),
			"ai_description": description,
		})
	if res.Error != nil {
		return fmt.Errorf("Store - UpdateAITags: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrRecordNotFound
	}
	return nil
}

func (s *Store) MemberRole(ctx context.Context, familyID, userID string) (string, error) {
	var m families.FamilyMember
	err := s.db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		First(&m).Error
	if err != nil {
		return "", fmt.Errorf("Store - MemberRole: %w", notFound(err))
	}
	return m.Role, nil
}

func (s *Store) GetChild(ctx context.Context, id string) (*children.Child, error) {
	var c children.Child
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, fmt.Errorf("Store - GetChild: %w", notFound(err))
	}
	return &c, nil
}

func (s *Store) FamilyOwner(ctx context.Context, familyID string) (*users.User, error) {
	var f families.Family
	if err := s.db.WithContext(ctx).Where("id = ?", familyID).First(&f).Error; err != nil {
		return nil, fmt.Errorf("Store - FamilyOwner - family: %w", notFound(err))
	}

	var u users.User
	if err := s.db.WithContext(ctx).Preload("Plan").Where("id = ?", f.OwnerID).First(&u).Error; err != nil {
		return nil, fmt.Errorf("Store - FamilyOwner - user: %w", notFound(err))
	}
	return &u, nil
}

func (s *Store) CountArtworks(ctx context.Context, familyID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&artworks.Artwork{}).
		Where("family_id = ?", familyID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("Store - CountArtworks: %w", err)
	}
	return n, nil
}
