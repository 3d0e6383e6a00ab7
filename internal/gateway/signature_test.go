package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

// sign computes the hex HMAC the gateway would send for a body.
func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	sig := sign(body, "whsec")

	if !VerifySignature(body, sig, "whsec") {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifySignature_Reject(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	good := sign(body, "whsec")

	cases := map[string]struct {
		body   []byte
		sig    string
		secret string
	}{
		"wrong secret":     {body, good, "other"},
		"tampered body":    {[]byte(`{"event":"payment.failed"}`), good, "whsec"},
		"empty secret":     {body, good, ""},
		"empty signature":  {body, "", "whsec"},
		"not hex":          {body, "zzzz", "whsec"},
		"truncated digest": {body, good[:32], "whsec"},
	}
	for name, tc := range cases {
		if VerifySignature(tc.body, tc.sig, tc.secret) {
			t.Errorf("%s: expected rejection", name)
		}
	}
}

func TestVerifySignature_ExactBytes(t *testing.T) {
	// Whitespace-only differences change the signed representation; a
	// re-serialized payload must not verify.
	body := []byte(`{"a":1,"b":2}`)
	reserialized := []byte(`{"a": 1, "b": 2}`)
	sig := sign(body, "whsec")

	if !VerifySignature(body, sig, "whsec") {
		t.Fatal("original bytes should verify")
	}
	if VerifySignature(reserialized, sig, "whsec") {
		t.Fatal("re-serialized bytes must not verify")
	}
}
