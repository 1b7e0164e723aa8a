// Package http wires the session flow endpoints onto a ServeMux and maps
// flow outcomes to status codes, cookies, and response bodies.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	cache   cache.Cache
	cookies httpx.CookieWriter

	Flows   *service.SessionFlowController
	CSRF    *service.CSRFGuard
	Revoked *service.RevocationRegistry
	Metrics *metrics.Metrics
}

func NewRouter(
	buildVersion string,
	c cache.Cache,
	cookies httpx.CookieWriter,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		cache:        c,
		cookies:      cookies,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	// The CSRF guard runs globally: every response carries a fresh token,
	// every mutating request must present one.
	r.middlewares = append(r.middlewares,
		httpx.CSRFMiddleware(r.CSRF, r.Metrics.CSRFRejection),
	)

	r.registerSessions()
	r.registerProfile()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	// POST /signin - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/auth/signin",
		httpx.Chain(&SignInHandler{Flows: r.Flows, Cookies: r.cookies, Metrics: r.Metrics},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(&SignUpHandler{Flows: r.Flows, Metrics: r.Metrics},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit (legitimate clients rotate often)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(&RefreshHandler{Flows: r.Flows, Cookies: r.cookies, Metrics: r.Metrics},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /signout - moderate rate limit
	r.Mux.Handle("POST /v1/auth/signout",
		httpx.Chain(&SignOutHandler{Flows: r.Flows, Cookies: r.cookies, Metrics: r.Metrics},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /csrf - token priming for clients that have not made a request
	// yet; the global middleware does the actual issuing.
	r.Mux.Handle("GET /v1/auth/csrf",
		httpx.Chain(CSRFPrimeHandler(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerProfile() {
	// GET /me - authenticated, lenient rate limit
	secured := httpx.Chain(&MeHandler{},
		httpx.AuthnMiddleware(r.Flows.Access, r.Revoked),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /v1/me", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
