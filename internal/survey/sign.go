package survey

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes an HMAC-SHA256 digest over the canonical form of the
// parameter set, keyed with the UTF-8 bytes of secret, and returns it as
// lowercase hex. Deterministic: content-equal sets under the same secret
// always produce the same signature.
//
// Sign never fails; rejecting an empty secret is the caller's job (see
// ErrMissingSecret), since a MAC under an empty key proves nothing.
func Sign(secret string, p *Params) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(Canonical(p)))
	return hex.EncodeToString(mac.Sum(nil))
}
