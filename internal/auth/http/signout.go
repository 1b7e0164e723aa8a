package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

type SignOutHandler struct {
	Flows   *service.SessionFlowController
	Cookies httpx.CookieWriter
	Metrics *metrics.Metrics
}

// ServeHTTP ends the session. Cookies are cleared unconditionally before
// anything else, so even a failed revocation leaves the client signed out.
// A request with no token at all is a 200: signing out twice is not an
// error worth surfacing.
func (h *SignOutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	h.Cookies.Clear(w)

	raw := bearerOrCookie(r)
	if raw == "" {
		httpx.WriteFlow(w, http.StatusOK, true, "signed out")
		return
	}

	if err := h.Flows.SignOut(ctx, raw); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAccess):
			httpx.WriteFlow(w, http.StatusUnauthorized, false, "invalid or expired token")
		default:
			log.Error("sign-out failed", "err", err)
			httpx.WriteFlow(w, http.StatusInternalServerError, false, "sign-out is temporarily unavailable")
		}
		return
	}

	h.Metrics.Revocation()
	httpx.WriteFlow(w, http.StatusOK, true, "signed out")
}

func bearerOrCookie(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	return httpx.ReadCookie(r, httpx.AccessTokenCookie)
}
