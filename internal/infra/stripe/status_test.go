package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripeStatus(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.Equal(t, StatusNone, NormalizeStripeStatus(nil))
	assert.Equal(t, StatusNone, NormalizeStripeStatus(s("  ")))
	assert.Equal(t, StatusActive, NormalizeStripeStatus(s("active")))
	assert.Equal(t, StatusPastDue, NormalizeStripeStatus(s("unpaid")))
	assert.Equal(t, StatusCanceled, NormalizeStripeStatus(s("incomplete_expired")))
	assert.Equal(t, "incomplete", NormalizeStripeStatus(s("incomplete")))

	assert.True(t, IsPaying(StatusTrialing))
	assert.False(t, IsPaying(StatusPastDue))
}

func TestConfigure(t *testing.T) {
	assert.ErrorIs(t, Configure(""), ErrNotConfigured)
	assert.NoError(t, Configure("sk_test_123"))
	assert.Equal(t, 12.5, Cents(1250))
}
