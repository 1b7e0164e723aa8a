package http

import (
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
)

type MeHandler struct{}

type meResponse struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	GivenName     string         `json:"givenName"`
	Surname       string         `json:"surName"`
	Role          string         `json:"role"`
	AffiliationID string         `json:"affiliationId,omitempty"`
	LanguageID    string         `json:"languageId,omitempty"`
	Grants        []domain.Grant `json:"grants"`
}

// ServeHTTP echoes the verified claims back as a profile document. The
// authentication middleware has already done all the work.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteFlow(w, http.StatusUnauthorized, false, "authentication required")
		return
	}

	grants := claims.Grants
	if grants == nil {
		grants = []domain.Grant{}
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		ID:            claims.Subject,
		Email:         claims.Email,
		GivenName:     claims.GivenName,
		Surname:       claims.Surname,
		Role:          claims.Role,
		AffiliationID: claims.AffiliationID,
		LanguageID:    claims.LanguageID,
		Grants:        grants,
	})
}
