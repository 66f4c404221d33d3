// Package token generates the opaque random keys used for API tokens and
// password reset links.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// KeyLength is the number of hex characters in a generated API token key.
const KeyLength = 40

// ResetTokenLength is the number of hex characters in a password reset token.
const ResetTokenLength = 64

// NewKey returns a random 40-character hex key for an API token.
func NewKey() (string, error) {
	return randomHex(KeyLength)
}

// NewResetToken returns a random 64-character hex token for a password reset.
func NewResetToken() (string, error) {
	return randomHex(ResetTokenLength)
}

func randomHex(length int) (string, error) {
	buf := make([]byte, length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
