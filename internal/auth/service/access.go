package service

import (
	"context"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/identity"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// AccessTokenIssuer creates and verifies the short-lived signed identity
// tokens presented on every authenticated request.
type AccessTokenIssuer struct {
	Signer *jwtx.HS256
	Grants identity.GrantSource
	TTL    time.Duration
}

// Issue snapshots the identity and its plan grants into signed claims under
// the given jti. Grant enrichment is best effort: a failed lookup degrades
// to an empty grant list rather than failing the sign-in.
func (i *AccessTokenIssuer) Issue(ctx context.Context, id *domain.Identity, jti string) (string, error) {
	claims := jwtx.NewAccessClaims(id.ID, jti, i.Signer.Issuer(), i.TTL, time.Now().UTC())
	claims.Email = id.Email
	claims.GivenName = id.GivenName
	claims.Surname = id.Surname
	claims.Role = string(id.Role)
	claims.AffiliationID = id.AffiliationID
	claims.LanguageID = id.LanguageID

	if i.Grants != nil {
		grants, err := i.Grants.GrantsFor(ctx, id.ID)
		if err != nil {
			slogx.FromContext(ctx).Warn("grant enrichment failed, issuing without grants",
				"subject", id.ID, "err", err)
		} else {
			claims.Grants = grants
		}
	}

	return i.Signer.SignAccess(claims)
}

// Verify cryptographically checks signature and expiry, returning the claims
// or (nil, false) on any failure. It never touches the cache: revocation is
// the request gate's concern, which keeps Verify cheap to call per request.
func (i *AccessTokenIssuer) Verify(token string) (*jwtx.AccessClaims, bool) {
	claims, err := i.Signer.ParseAccess(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
