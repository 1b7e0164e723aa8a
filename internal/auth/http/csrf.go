package http

import (
	"net/http"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
)

// CSRFPrimeHandler lets a fresh client obtain its first CSRF token before
// making any mutating request. The global middleware sets the token header
// on this response like any other; the handler only has to answer.
func CSRFPrimeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteFlow(w, http.StatusOK, true, "csrf token issued")
	}
}
