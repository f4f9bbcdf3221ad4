package social

import (
	"time"

	"kidcanvas/internal/domain/artworks"
	"kidcanvas/internal/domain/users"
)

const (
	EmojiHeart = "heart"
	EmojiStar  = "star"
	EmojiLaugh = "laugh"
	EmojiWow   = "wow"
	EmojiClap  = "clap"
)

// Emojis in display order.
var Emojis = []string{EmojiHeart, EmojiStar, EmojiLaugh, EmojiWow, EmojiClap}

func ValidEmoji(e string) bool {
	for _, v := range Emojis {
		if v == e {
			return true
		}
	}
	return false
}

type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArtworkID string    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_unique,priority:1" json:"artwork_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_unique,priority:2" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_reactions_unique,priority:3" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`

	Artwork *artworks.Artwork `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE" json:"-"`
}

type Comment struct {
	ID        string      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ArtworkID string      `gorm:"type:uuid;not null;index" json:"artwork_id"`
	UserID    string      `gorm:"type:uuid;not null" json:"user_id"`
	User      *users.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Body      string      `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time   `json:"created_at"`

	Artwork *artworks.Artwork `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE" json:"-"`
}

const MaxCommentLength = 1000
