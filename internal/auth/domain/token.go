package domain

import (
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
)

// Grant aliases the claim-level capability entry so callers outside the
// token layer don't import jwtx directly.
type Grant = jwtx.Grant

// TokenPair is what a successful sign-in or refresh produces: a short-lived
// signed access token and a longer-lived refresh token, both carrying the
// same jti.
type TokenPair struct {
	JTI          string
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}
