package stripe

import (
	"errors"

	stripego "github.com/stripe/stripe-go/v75"
)

var ErrNotConfigured = errors.New("stripe key not configured")

// Configure sets the process-wide Stripe key used by the SDK resource packages.
func Configure(secretKey string) error {
	if secretKey == "" {
		return ErrNotConfigured
	}
	stripego.Key = secretKey
	return nil
}

// Cents converts a Stripe minor-unit amount to major units.
func Cents(amount int64) float64 {
	return float64(amount) / 100.0
}
