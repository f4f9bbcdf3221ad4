package users

import (
	"time"

	"kidcanvas/internal/domain/plans"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	ID           string  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string  `json:"name"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Password     *string `gorm:"" json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	Role         string  `json:"role"`
	IsVerified   bool    `json:"is_verified"`

	PlanID *uint       `json:"plan_id,omitempty"`
	Plan   *plans.Plan `json:"plan,omitempty"`

	SubscriptionStart        *time.Time `json:"-"`
	SubscriptionEnd          *time.Time `json:"-"`
	SubscriptionId           *string    `gorm:"column:subscription_id;uniqueIndex:idx_users_subscription_id" json:"-"`
	StripeCustomerID         *string    `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id" json:"-"`
	CurrentPeriodEnd         *time.Time `gorm:"column:current_period_end" json:"-"`
	StripeSubscriptionStatus *string    `gorm:"column:stripe_subscription_status" json:"-"`

	TrialStartAt *time.Time `gorm:"column:trial_start_at" json:"-"`
	TrialEndAt   *time.Time `gorm:"column:trial_end_at" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
