package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// TokenVerifier checks an access token's signature and expiry, returning
// the claims or false. It never performs I/O.
type TokenVerifier interface {
	Verify(token string) (*jwtx.AccessClaims, bool)
}

// RevocationChecker reports whether a token id is on the deny-list.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) bool
}

// AuthnMiddleware is the request-authentication gate: it decodes the access
// token (bearer header or session cookie), verifies it, and consults the
// revocation registry before admitting the request. Verified claims are
// attached to the request context.
func AuthnMiddleware(v TokenVerifier, rev RevocationChecker) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := bearerToken(r)
			if raw == "" {
				raw = ReadCookie(r, AccessTokenCookie)
			}
			if raw == "" {
				WriteFlow(w, http.StatusUnauthorized, false, "authentication required")
				return
			}

			claims, ok := v.Verify(raw)
			if !ok {
				log.Debug("access token verification failed")
				WriteFlow(w, http.StatusUnauthorized, false, "invalid or expired token")
				return
			}

			if rev.IsRevoked(ctx, claims.ID) {
				log.Info("revoked access token presented", "jti", claims.ID)
				WriteFlow(w, http.StatusUnauthorized, false, "invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, CtxKeySubjectID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}
