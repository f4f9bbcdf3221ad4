package plans

import "strings"

const (
	TierFree    = "free"
	TierFamily  = "family"
	TierPremium = "premium"
)

// Default artwork caps per tier. Unlimited is 0.
const (
	FreeArtworkLimit    = 50
	FamilyArtworkLimit  = 1000
	PremiumArtworkLimit = Unlimited

	Unlimited = 0
)

// PlanTier returns the effective tier for a plan.
// Priority:
// 1. Explicit Tier stored in DB
// 2. Fallback inference by price
func PlanTier(p *Plan) string {
	if p == nil {
		return TierFree
	}

	tier := strings.ToLower(strings.TrimSpace(p.Tier))
	switch tier {
	case TierFree, TierFamily, TierPremium:
		return tier
	}

	return inferTierFromPrice(p.PriceEUR)
}

func inferTierFromPrice(priceEUR float64) string {
	switch {
	case priceEUR >= 9:
		return TierPremium
	case priceEUR > 0:
		return TierFamily
	default:
		return TierFree
	}
}

// TierArtworkLimit is the default cap for a tier.
func TierArtworkLimit(tier string) int {
	switch tier {
	case TierPremium:
		return PremiumArtworkLimit
	case TierFamily:
		return FamilyArtworkLimit
	default:
		return FreeArtworkLimit
	}
}

// ArtworkLimit prefers the plan's explicit limit over the tier default.
func ArtworkLimit(p *Plan) int {
	if p != nil && p.ArtworkLimit > 0 {
		return p.ArtworkLimit
	}
	return TierArtworkLimit(PlanTier(p))
}
