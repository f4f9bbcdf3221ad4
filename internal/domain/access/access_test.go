package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kidcanvas/internal/domain/plans"
	"kidcanvas/internal/domain/users"
)

func strPtr(s string) *string { return &s }

func TestComputeEffectiveAccessState(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-48 * time.Hour)
	family := &plans.Plan{Tier: plans.TierFamily}

	tests := []struct {
		name string
		user users.User
		want AccessState
	}{
		{"trial", users.User{TrialEndAt: &future}, AccessTrial},
		{"no subscription", users.User{TrialEndAt: &past}, AccessLocked},
		{"active family", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("active"), Plan: family}, AccessFull},
		{"active free plan", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("active"), Plan: &plans.Plan{Tier: plans.TierFree}}, AccessLimited},
		{"past due", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("unpaid"), Plan: family}, AccessLimited},
		{"canceled paid through", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("canceled"), CurrentPeriodEnd: &future, Plan: family}, AccessFull},
		{"canceled expired", users.User{SubscriptionId: strPtr("sub_1"), StripeSubscriptionStatus: strPtr("canceled"), CurrentPeriodEnd: &past, Plan: family}, AccessLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeEffectiveAccessState(now, tt.user))
		})
	}
}

func TestComputePolicy(t *testing.T) {
	now := time.Now()
	premium := users.User{
		SubscriptionId:           strPtr("sub_1"),
		StripeSubscriptionStatus: strPtr("active"),
		Plan:                     &plans.Plan{Tier: plans.TierPremium},
	}

	p := ComputePolicy(now, premium)
	assert.Equal(t, AccessFull, p.State)
	assert.Equal(t, plans.TierPremium, p.Tier)
	assert.True(t, p.Can(CapArtBook))
	assert.Equal(t, plans.Unlimited, p.ArtworkLimit)

	free := ComputePolicy(now, users.User{})
	assert.Equal(t, AccessLocked, free.State)
	assert.True(t, free.Can(CapUpload))
	assert.False(t, free.Can(CapAITags))
	assert.Equal(t, plans.FreeArtworkLimit, free.ArtworkLimit)
}
