package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// RevocationRegistry is the deny-list of access-token jtis consulted by the
// request gate. Records carry a TTL bounded by the remaining life of the
// token they block, so the registry never accumulates stale entries.
type RevocationRegistry struct {
	Cache cache.Cache
}

// Revoke writes a revocation record for jti. The ttl should be the revoked
// access token's remaining lifetime; non-positive values are clamped to a
// minimal TTL so the write still lands.
func (r *RevocationRegistry) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}

	stamp := time.Now().UTC().Format(time.RFC3339)
	if err := r.Cache.Set(ctx, cache.BlacklistKey(jti), stamp, ttl); err != nil {
		return fmt.Errorf("%w: writing revocation record: %w", ErrUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether jti is on the deny-list. Unknown jtis are not
// revoked. Transient lookup failures are logged and treated as not revoked.
func (r *RevocationRegistry) IsRevoked(ctx context.Context, jti string) bool {
	_, err := r.Cache.Get(ctx, cache.BlacklistKey(jti))
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		slogx.FromContext(ctx).Error("revocation lookup failed, treating as not revoked",
			"jti", jti, "err", err)
	}
	return false
}
