package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateID generates a random identifier with the given prefix.
// Format: prefix_randomhex
// Example: qr_9f2c4e1ab07d3356
func GenerateID(prefix string, size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateQuoteRequestID generates a quote request id: qr_xxx
func GenerateQuoteRequestID() (string, error) {
	return GenerateID("qr", 8)
}
