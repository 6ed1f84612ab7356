package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ParseAPIKey strips the configured key prefix (e.g. "sk_live_") and returns
// the secret portion. ok is false when the prefix does not match.
func ParseAPIKey(raw, prefix string) (secret string, ok bool) {
	if prefix == "" || !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	return strings.TrimPrefix(raw, prefix), true
}

// HMAC256Hex derives the peppered lookup digest for a secret (64 hex chars).
func HMAC256Hex(pepper, secret string) string {
	m := hmac.New(sha256.New, []byte(pepper))
	m.Write([]byte(secret))
	return hex.EncodeToString(m.Sum(nil))
}
