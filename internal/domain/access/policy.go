package access

import (
	"slices"
	"time"

	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
)

type Policy struct {
	State        AccessState
	Tier         string
	Capabilities []string
	ArtworkLimit int
}

func ComputePolicy(now time.Time, u users.User) Policy {
	state := ComputeEffectiveAccessState(now, u)

	tier := plans.TierFree
	switch state {
	case AccessFull:
		tier = plans.PlanTier(u.Plan)
	case AccessTrial:
		tier = string(AccessTrial)
	}

	return Policy{
		State:        state,
		Tier:         tier,
		Capabilities: CapabilitiesFor(state, u.Plan),
		ArtworkLimit: ArtworkLimitFor(state, u.Plan),
	}
}

func (p Policy) Can(capability string) bool {
	return slices.Contains(p.Capabilities, capability)
}
