// Package securetoken generates opaque tokens for links sent by email.
package securetoken

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// New returns 2*n hex characters from n random bytes.
func New(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("securetoken - New: %w", err)
	}
	return hex.EncodeToString(b), nil
}
