package http

import (
	"net/http"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
)

// ReadyzHandler answers 200 only while the token cache is reachable. A
// service that cannot reach its cache can still verify access tokens but
// cannot issue, rotate, or revoke, so it should be pulled from rotation.
func ReadyzHandler(startTime time.Time, version string, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Cache: "ok"}
		status := "ok"
		code := http.StatusOK

		if err := c.Ping(r.Context()); err != nil {
			checks.Cache = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
