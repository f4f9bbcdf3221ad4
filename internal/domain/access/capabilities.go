package access

import (
	"slices"

	"kidcanvas/internal/domain/plans"
)

var baseCapabilities = []string{CapUpload, CapEdit, CapReact, CapComment}

func CapabilitiesFor(state AccessState, plan *plans.Plan) []string {
	caps := slices.Clone(baseCapabilities)

	switch state {
	case AccessTrial:
		return append(caps, CapAITags, CapArtBook)
	case AccessFull:
		switch plans.PlanTier(plan) {
		case plans.TierPremium:
			return append(caps, CapAITags, CapArtBook)
		case plans.TierFamily:
			return append(caps, CapAITags)
		}
	}

	return caps
}

// ArtworkLimitFor returns the per-family artwork cap. 0 means unlimited.
func ArtworkLimitFor(state AccessState, plan *plans.Plan) int {
	switch state {
	case AccessTrial:
		return plans.FamilyArtworkLimit
	case AccessFull:
		return plans.ArtworkLimit(plan)
	default:
		return plans.FreeArtworkLimit
	}
}
