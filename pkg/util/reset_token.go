package util

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// resetTokenLength is the byte length of the raw reset token
const resetTokenLength = 20

// GenerateResetToken creates a cryptographically secure random token.
// The raw token goes to the user over the notification channel; only its
// hash is ever persisted.
func GenerateResetToken() (string, error) {
	bytes := make([]byte, resetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// HashResetToken returns the hex-encoded SHA-256 digest of a raw reset token
func HashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
