package httpx

import (
	"context"
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// CSRF header contract: the client echoes the token from the response
// header of its previous request. A header, never a cookie - that is what
// preserves the double-submit property.
const (
	CSRFHeader          = "X-CSRF-Token"
	exposeHeadersHeader = "Access-Control-Expose-Headers"
)

// CSRFIssuerVerifier is the guard consulted by the middleware.
type CSRFIssuerVerifier interface {
	Issue(ctx context.Context) (string, error)
	Verify(ctx context.Context, token string) bool
}

// CSRFMiddleware enforces the double-submit check on state-changing methods
// and re-issues a fresh token on every response - success or failure - so
// the client always has a current token queued for its next request.
// OnRejected, when set, is invoked for each rejected request (metrics hook).
func CSRFMiddleware(guard CSRFIssuerVerifier, onRejected func()) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			// Headers must land before the handler writes the status line.
			fresh, err := guard.Issue(ctx)
			if err != nil {
				log.Error("failed to issue csrf token", "err", err)
			} else {
				w.Header().Set(CSRFHeader, fresh)
				w.Header().Add(exposeHeadersHeader, CSRFHeader)
			}

			if isMutating(r.Method) {
				presented := r.Header.Get(CSRFHeader)
				if !guard.Verify(ctx, presented) {
					if onRejected != nil {
						onRejected()
					}
					log.Warn("csrf verification failed",
						"method", r.Method,
						"path", r.URL.Path,
						"token_present", presented != "",
					)
					WriteFlow(w, http.StatusForbidden, false, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}
