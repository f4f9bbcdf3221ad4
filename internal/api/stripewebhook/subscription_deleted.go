package stripewebhooks

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v75"

	"kidcanvas/internal/domain/users"
)

func (h *Handler) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	user, ok := h.findSubscriber(ctx, sub)
	if !ok {
		return nil
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	return h.db.WithContext(ctx).Model(&users.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"stripe_subscription_status": string(sub.Status),
			"subscription_end":           periodEnd,
			"current_period_end":         periodEnd,
		}).Error
}
