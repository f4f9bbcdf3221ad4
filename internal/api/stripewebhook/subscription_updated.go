package stripewebhooks

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v75"

	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
)

func (h *Handler) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return errors.New("subscription missing id/items/price")
	}

	// unknown users and prices are acknowledged so Stripe does not retry
	user, ok := h.findSubscriber(ctx, sub)
	if !ok {
		return nil
	}

	db := h.db.WithContext(ctx)

	var plan plans.Plan
	if err := db.Where("stripe_price_id = ?", sub.Items.Data[0].Price.ID).First(&plan).Error; err != nil {
		h.logger.Warn("StripeWebhook - subscription.updated - unknown price %s", sub.Items.Data[0].Price.ID)
		return nil
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0)
	return db.Model(&users.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"plan_id":                    plan.ID,
			"subscription_end":           periodEnd,
			"current_period_end":         periodEnd,
			"stripe_subscription_status": string(sub.Status),
			"subscription_id":            sub.ID,
		}).Error
}

// findSubscriber resolves the user by metadata.user_id, then by subscription id.
func (h *Handler) findSubscriber(ctx context.Context, sub *stripe.Subscription) (users.User, bool) {
	db := h.db.WithContext(ctx)

	var user users.User
	if id := userIDFromMetadata(sub.Metadata); id != "" {
		if err := db.Where("id = ?", id).First(&user).Error; err == nil {
			return user, true
		}
	}
	if err := db.Where("subscription_id = ?", sub.ID).First(&user).Error; err == nil {
		return user, true
	}
	return user, false
}
