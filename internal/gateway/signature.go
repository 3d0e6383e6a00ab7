// Package gateway integrates with the Razorpay payment gateway: payment-link
// management through the official SDK and webhook authenticity verification.
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks the gateway's HMAC-SHA256 hex signature over the
// exact raw request body using the shared webhook secret.
//
// It must be called on the bytes as received, before the payload is parsed or
// re-serialized: re-encoding JSON can reorder keys and change the signed
// representation. The comparison is constant time. It returns false — never
// an error — when the secret is unconfigured or the signature is not valid
// hex, and callers must treat false as "reject".
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}
