package billing

import (
	"time"

	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
)

type Payment struct {
	ID                   uint        `gorm:"primaryKey" json:"id"`
	UserID               string      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                 users.User  `json:"-"`
	PlanID               *uint       `json:"plan_id"`
	Plan                 *plans.Plan `json:"plan,omitempty"`
	StripeSessionID      string      `gorm:"uniqueIndex" json:"stripe_session_id"`
	StripeSubscriptionID *string     `json:"stripe_subscription_id"`
	AmountEUR            float64     `json:"amount_eur"`
	Status               string      `json:"status"`
	InvoiceID            *string     `json:"invoice_id"`
	ReceiptURL           *string     `json:"receipt_url"`
	CreatedAt            time.Time   `json:"created_at"`
}
