package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

type SignInHandler struct {
	Flows   *service.SessionFlowController
	Cookies httpx.CookieWriter
	Metrics *metrics.Metrics
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP authenticates the submitted credentials and, on success, sets
// the token pair as HTTP-only cookies. Invalid credentials are 401 with a
// deliberately uninformative message; backend trouble is 500.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteFlow(w, http.StatusBadRequest, false, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteFlow(w, http.StatusBadRequest, false, "email and password are required")
		return
	}

	pair, err := h.Flows.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.Metrics.SignIn(metrics.ResultRejected)
			httpx.WriteFlow(w, http.StatusUnauthorized, false, "invalid credentials")
		default:
			h.Metrics.SignIn(metrics.ResultError)
			log.Error("sign-in failed", "err", err)
			httpx.WriteFlow(w, http.StatusInternalServerError, false, "sign-in is temporarily unavailable")
		}
		return
	}

	h.Metrics.SignIn(metrics.ResultOK)
	h.Metrics.TokenIssued(metrics.KindAccess)
	h.Metrics.TokenIssued(metrics.KindRefresh)

	h.Cookies.SetTokenPair(w, pair.AccessToken, pair.RefreshToken, pair.AccessTTL, pair.RefreshTTL)
	httpx.WriteFlow(w, http.StatusOK, true, "signed in")
}
