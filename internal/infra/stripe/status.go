package stripe

import "strings"

// Normalized subscription statuses stored on users.
const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// NormalizeStripeStatus folds Stripe's subscription statuses into the set above.
// Unknown values are passed through trimmed.
func NormalizeStripeStatus(s *string) string {
	if s == nil {
		return StatusNone
	}
	switch v := strings.TrimSpace(*s); v {
	case "":
		return StatusNone
	case "past_due", "unpaid":
		return StatusPastDue
	case "canceled", "incomplete_expired":
		return StatusCanceled
	default:
		return v
	}
}

func IsPaying(status string) bool {
	return status == StatusActive || status == StatusTrialing
}
