package artworks

import (
	"time"

	"github.com/lib/pq"
)

type Artwork struct {
	ID             string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FamilyID       string         `gorm:"type:uuid;not null;index:idx_artworks_family_created,priority:1" json:"family_id"`
	ChildID        string         `gorm:"type:uuid;not null;index" json:"child_id"`
	ImageURL       string         `gorm:"not null" json:"image_url"`
	ThumbnailURL   string         `gorm:"not null" json:"thumbnail_url"`
	Title          string         `gorm:"not null" json:"title"`
	Description    *string        `json:"description"`
	CreatedDate    time.Time      `gorm:"type:date;not null;index:idx_artworks_family_created,priority:2" json:"created_date"`
	ChildAgeMonths *int           `json:"child_age_months"`
	Tags           pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	AITags         pq.StringArray `gorm:"column:ai_tags;type:text[];not null;default:'{}'" json:"ai_tags"`
	AIDescription  *string        `gorm:"column:ai_description" json:"ai_description"`
	IsFavorite     bool           `gorm:"not null;default:false" json:"is_favorite"`
	UploadedBy     string         `gorm:"type:uuid;not null" json:"uploaded_by"`
	UploadedAt     time.Time      `gorm:"autoCreateTime" json:"uploaded_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AllTags merges user and AI tags, user tags first.
func (a Artwork) AllTags() []string {
	out := make([]string, 0, len(a.Tags)+len(a.AITags))
	seen := make(map[string]struct{}, cap(out))
	for _, list := range [][]string{a.Tags, a.AITags} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
