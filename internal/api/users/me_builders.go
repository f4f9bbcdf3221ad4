package users

import (
	"time"

	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
	"kidcanvas/internal/infra/stripe"
)

func BuildMeResponse(now time.Time, u users.User, families int64) MeResponse {
	policy := access.ComputePolicy(now, u)

	return MeResponse{
		User: UserDTO{
			ID:           u.ID,
			Email:        u.Email,
			Name:         u.Name,
			AvatarURL:    u.AvatarURL,
			AuthProvider: u.AuthProvider,
			Role:         u.Role,
			IsVerified:   u.IsVerified,
			Families:     families,
		},
		Billing: BillingDTO{
			Plan:         BuildPlanDTO(u.Plan),
			Subscription: BuildSubscriptionDTO(u),
			Trial:        BuildTrialDTO(now, u.TrialStartAt, u.TrialEndAt),
		},
		Access: AccessDTO{
			State:        string(policy.State),
			Tier:         policy.Tier,
			Capabilities: policy.Capabilities,
			ArtworkLimit: policy.ArtworkLimit,
		},
	}
}

func BuildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:            p.ID,
		Key:           p.Name,
		Tier:          plans.PlanTier(p),
		Interval:      p.Interval,
		PriceEUR:      p.PriceEUR,
		StripePriceID: p.StripePriceID,
	}
}

func BuildSubscriptionDTO(u users.User) *SubscriptionDTO {
	if u.SubscriptionId == nil || *u.SubscriptionId == "" {
		return nil
	}
	return &SubscriptionDTO{
		Status:               stripe.NormalizeStripeStatus(u.StripeSubscriptionStatus),
		StartsAt:             u.SubscriptionStart,
		CurrentPeriodEnd:     u.CurrentPeriodEnd,
		StripeSubscriptionID: u.SubscriptionId,
	}
}

func BuildTrialDTO(now time.Time, start, end *time.Time) *TrialDTO {
	if start == nil || end == nil {
		return nil
	}

	days := 0
	if now.Before(*end) {
		days = int(end.Sub(now).Hours() / 24)
	}

	return &TrialDTO{
		StartsAt: start,
		EndsAt:   end,
		DaysLeft: days,
	}
}
