package access

import (
	"time"

	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/stripe"
)

// Effective access for UI/product: trial|full|limited|locked
func ComputeEffectiveAccessState(now time.Time, u users.User) AccessState {
	if u.TrialEndAt != nil && now.Before(*u.TrialEndAt) {
		return AccessTrial
	}

	if u.SubscriptionId == nil || *u.SubscriptionId == "" {
		return AccessLocked
	}

	switch stripe.NormalizeStripeStatus(u.StripeSubscriptionStatus) {
	case stripe.StatusActive, stripe.StatusTrialing:
		return stateForTier(u.Plan)

	case stripe.StatusPastDue:
		return AccessLimited

	case stripe.StatusCanceled:
		// paid-through period still counts
		if u.CurrentPeriodEnd != nil && now.Before(*u.CurrentPeriodEnd) {
			return stateForTier(u.Plan)
		}
		return AccessLocked

	default:
		return AccessLocked
	}
}

func stateForTier(p *plans.Plan) AccessState {
	switch plans.PlanTier(p) {
	case plans.TierFamily, plans.TierPremium:
		return AccessFull
	default:
		return AccessLimited
	}
}
