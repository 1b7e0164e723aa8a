package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// RefreshTokenIssuer creates, verifies, and retires the longer-lived signed
// tokens that let a client mint a new session without re-authenticating.
// Only a keyed digest of each issued token is persisted, under
// {refresh}:{jti}; the raw token exists nowhere but the client's cookie.
type RefreshTokenIssuer struct {
	Signer *jwtx.HS256
	Cache  cache.Cache
	Hasher *cryptox.Hasher
	TTL    time.Duration
}

// Issue signs a minimal {jti, subject} payload and persists its digest. The
// cache write completes before the token is returned: the client discards
// its old refresh cookie on receipt, so losing the record after responding
// would strand the session.
func (i *RefreshTokenIssuer) Issue(ctx context.Context, subjectID, jti string) (string, error) {
	token, err := i.Signer.SignRefresh(jwtx.NewRefreshClaims(subjectID, jti, i.Signer.Issuer(), i.TTL, time.Now().UTC()))
	if err != nil {
		return "", fmt.Errorf("%w: signing refresh token: %w", ErrUnavailable, err)
	}

	if err := i.Cache.Set(ctx, cache.RefreshKey(jti), i.Hasher.Hash(token), i.TTL); err != nil {
		return "", fmt.Errorf("%w: persisting refresh record: %w", ErrUnavailable, err)
	}

	return token, nil
}

// Verify checks signature and expiry first (no I/O), then requires the
// cache record for the embedded jti to match a recomputed digest of the
// presented token, compared in constant time. The double check is the
// anti-replay invariant: a syntactically valid token superseded by rotation
// has no matching record and is rejected even though its signature holds.
//
// A cache miss yields ErrInvalidRefresh; a cache I/O failure yields
// ErrUnavailable so callers never mistake an outage for a rotated token.
func (i *RefreshTokenIssuer) Verify(ctx context.Context, token string) (*jwtx.RefreshClaims, error) {
	claims, err := i.Signer.ParseRefresh(token)
	if err != nil {
		slogx.FromContext(ctx).Debug("refresh token rejected", "reason", err)
		return nil, ErrInvalidRefresh
	}

	stored, err := i.Cache.Get(ctx, cache.RefreshKey(claims.ID))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("%w: reading refresh record: %w", ErrUnavailable, err)
	}

	if !i.Hasher.Equal(stored, i.Hasher.Hash(token)) {
		slogx.FromContext(ctx).Info("refresh token digest mismatch", "jti", claims.ID)
		return nil, ErrInvalidRefresh
	}

	return claims, nil
}

// Drop removes the refresh record for jti, ending the session's ability to
// rotate. Used at sign-out; rotation itself never calls this - a superseded
// record simply ages out on its own TTL.
func (i *RefreshTokenIssuer) Drop(ctx context.Context, jti string) error {
	if err := i.Cache.Delete(ctx, cache.RefreshKey(jti)); err != nil {
		return fmt.Errorf("%w: deleting refresh record: %w", ErrUnavailable, err)
	}
	return nil
}
