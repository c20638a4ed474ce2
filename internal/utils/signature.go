package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signaturePrefix tags the digest algorithm in X-Fleetdesk-Signature.
const signaturePrefix = "sha256="

// SignWebhook returns the X-Fleetdesk-Signature value for a quote webhook
// body: "sha256=" followed by the hex HMAC-SHA256 of payload under secret.
func SignWebhook(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook reports whether header is the signature of payload. Receivers
// of the sales-desk webhook use it; a header without the prefix never matches.
func VerifyWebhook(payload []byte, header, secret string) bool {
	if !strings.HasPrefix(header, signaturePrefix) {
		return false
	}
	return hmac.Equal([]byte(header), []byte(SignWebhook(payload, secret)))
}
