package artwork

import (
	"context"
	"fmt"
	"time"

	"kidcanvas/internal/domain/access"
	"kidcanvas/internal/domain/plans"
)

type Quota struct {
	Limit   int   `json:"limit"`
	Current int64 `json:"current"`
}

// Exceeded is false for unlimited plans.
func (q Quota) Exceeded() bool {
	return q.Limit != plans.Unlimited && q.Current >= int64(q.Limit)
}

// QuotaChecker derives a family's limit from its owner's plan.
type QuotaChecker struct {
	store Store
	now   func() time.Time
}

func NewQuotaChecker(s Store) *QuotaChecker {
	return &QuotaChecker{store: s, now: time.Now}
}

func (q *QuotaChecker) Check(ctx context.Context, familyID string) (Quota, error) {
	owner, err := q.store.FamilyOwner(ctx, familyID)
	if err != nil {
		return Quota{}, fmt.Errorf("QuotaChecker - Check - FamilyOwner: %w", err)
	}

	current, err := q.store.CountArtworks(ctx, familyID)
	if err != nil {
		return Quota{}, fmt.Errorf("QuotaChecker - Check - CountArtworks: %w", err)
	}

	policy := access.ComputePolicy(q.now(), *owner)

	return Quota{Limit: policy.ArtworkLimit, Current: current}, nil
}
