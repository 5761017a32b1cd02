package webutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateHash returns the hex-encoded SHA-256 of data.
func GenerateHash(data string) (string, error) {
	hasher := sha256.New()
	if _, err := hasher.Write([]byte(data)); err != nil {
		return "", fmt.Errorf("failed to write data to hasher: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
