package http

import (
	"errors"
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

type RefreshHandler struct {
	Flows   *service.SessionFlowController
	Cookies httpx.CookieWriter
	Metrics *metrics.Metrics
}

// ServeHTTP rotates the refresh token from the session cookie into a fresh
// pair. Every rejection is a 401; backend trouble is logged server-side but
// still answered as a 401 so the response does not reveal whether the
// presented token was valid.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw := httpx.ReadCookie(r, httpx.RefreshTokenCookie)
	if raw == "" {
		h.Metrics.Refresh(metrics.ResultRejected)
		httpx.WriteFlow(w, http.StatusUnauthorized, false, "no refresh token available")
		return
	}

	pair, err := h.Flows.RefreshSession(ctx, raw)
	if err != nil {
		h.Cookies.Clear(w)

		switch {
		case errors.Is(err, service.ErrInvalidRefresh):
			h.Metrics.Refresh(metrics.ResultRejected)
			httpx.WriteFlow(w, http.StatusUnauthorized, false, "refresh token has expired")
		default:
			h.Metrics.Refresh(metrics.ResultError)
			log.Error("refresh failed", "err", err)
			httpx.WriteFlow(w, http.StatusUnauthorized, false, "unable to refresh session")
		}
		return
	}

	h.Metrics.Refresh(metrics.ResultOK)
	h.Metrics.TokenIssued(metrics.KindAccess)
	h.Metrics.TokenIssued(metrics.KindRefresh)

	h.Cookies.SetTokenPair(w, pair.AccessToken, pair.RefreshToken, pair.AccessTTL, pair.RefreshTTL)
	httpx.WriteFlow(w, http.StatusOK, true, "session refreshed")
}
