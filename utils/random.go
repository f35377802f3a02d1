package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureToken returns a 64-character hex token from a CSPRNG.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
