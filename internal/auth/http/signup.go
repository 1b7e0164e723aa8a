package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/identity"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

type SignUpHandler struct {
	Flows   *service.SessionFlowController
	Metrics *metrics.Metrics
}

// ServeHTTP registers a new account and returns a bare access token in the
// response body. Sign-up does not start a session: no refresh token, no
// cookies. Field-level validation failures come back as a 400 with an
// errors map keyed by field name.
func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var reg identity.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		httpx.WriteFlow(w, http.StatusBadRequest, false, "invalid request body")
		return
	}

	token, id, err := h.Flows.SignUp(ctx, reg)
	if err != nil {
		var fe domain.FieldErrors
		if errors.As(err, &fe) {
			httpx.WriteJSON(w, http.StatusBadRequest, httpx.FlowResponse{
				Success: false,
				Message: "invalid registration",
				Errors:  fe,
			})
			return
		}

		log.Error("sign-up failed", "err", err)
		httpx.WriteFlow(w, http.StatusInternalServerError, false, "sign-up is temporarily unavailable")
		return
	}

	h.Metrics.TokenIssued(metrics.KindAccess)
	log.Info("account registered", "subject", id.ID)

	httpx.WriteJSON(w, http.StatusCreated, httpx.FlowResponse{
		Success: true,
		Message: "account created",
		Token:   token,
	})
}
