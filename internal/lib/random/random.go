package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewToken returns a hex string carrying size random bytes.
func NewToken(size int) (string, error) {
	b := make([]byte, size)

	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}
