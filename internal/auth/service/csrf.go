package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// CSRFGuard issues and verifies the short-lived tokens backing the
// double-submit check on state-changing requests. Tokens stay valid for
// multiple verifications until their TTL elapses; single use is deliberately
// not enforced so client retries within a request cycle keep working.
type CSRFGuard struct {
	Cache  cache.Cache
	Hasher *cryptox.Hasher
	TTL    time.Duration
}

// Issue generates a random token, stores its keyed digest under the CSRF
// namespace, and returns the raw token for the response header. The record
// is keyed by the digest too: the raw token never reaches the shared store
// in any form.
func (g *CSRFGuard) Issue(ctx context.Context) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("csrf: %w", err)
	}

	digest := g.Hasher.Hash(token)
	if err := g.Cache.Set(ctx, cache.CSRFKey(digest), digest, g.TTL); err != nil {
		return "", fmt.Errorf("csrf: %w", err)
	}

	return token, nil
}

// Verify fails closed: absent, malformed, unknown, and tampered tokens are
// all false. The stored digest is compared against a recomputed digest of
// the presented token in constant time.
func (g *CSRFGuard) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	digest := g.Hasher.Hash(token)
	stored, err := g.Cache.Get(ctx, cache.CSRFKey(digest))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slogx.FromContext(ctx).Error("csrf lookup failed", "err", err)
		}
		return false
	}

	return g.Hasher.Equal(stored, digest)
}
