package families

import (
	"time"

	"kidcanvas/internal/domain/users"
)

type Family struct {
	ID        string         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	OwnerID   string         `gorm:"type:uuid;not null;index" json:"owner_id"`
	Members   []FamilyMember `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type FamilyMember struct {
	FamilyID string      `gorm:"type:uuid;primaryKey" json:"family_id"`
	UserID   string      `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role     string      `gorm:"type:varchar(20);not null" json:"role"`
	User     *users.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	JoinedAt time.Time   `gorm:"autoCreateTime" json:"joined_at"`
}

type Invite struct {
	ID         string     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FamilyID   string     `gorm:"type:uuid;not null;index" json:"family_id"`
	Family     *Family    `gorm:"constraint:OnDelete:CASCADE" json:"family,omitempty"`
	Email      string     `gorm:"not null;index" json:"email"`
	Role       string     `gorm:"type:varchar(20);not null" json:"role"`
	Token      string     `gorm:"not null;uniqueIndex" json:"-"`
	InvitedBy  string     `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

const InviteTTL = 7 * 24 * time.Hour

func (i Invite) Usable(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}
