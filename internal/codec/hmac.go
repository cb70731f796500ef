// Package codec holds the small encoding helpers shared by the exchange adapters:
// request signing digests, lenient numeric decoding and timestamp formatting.
package codec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignHMACSHA256 returns the lowercase hex HMAC-SHA256 of message keyed by secret.
func SignHMACSHA256(secret, message string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
