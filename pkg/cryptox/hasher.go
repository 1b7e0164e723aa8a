package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// ErrEmptySecret reports a Hasher constructed without a keying secret. This
// is a startup configuration error, never a runtime condition.
var ErrEmptySecret = errors.New("cryptox: hasher secret must not be empty")

// Hasher produces deterministic one-way digests of token values, keyed with
// a server-side secret. Raw tokens are digested before they touch any shared
// store, so a compromised store does not leak usable credentials.
type Hasher struct {
	secret []byte
}

// NewHasher returns a Hasher keyed with secret.
func NewHasher(secret []byte) (*Hasher, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Hasher{secret: append([]byte(nil), secret...)}, nil
}

// Hash returns the HMAC-SHA256 digest of raw as a base64url string.
func (h *Hasher) Hash(raw string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Equal compares two digests in constant time.
func (h *Hasher) Equal(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
