package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/identity"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

type testEnv struct {
	server *httptest.Server
	client *http.Client
	cache  *cache.Memory

	// csrf holds the latest token observed in a response header.
	csrf string
}

func newTestEnv(t *testing.T, accessTTL, refreshTTL time.Duration) *testEnv {
	t.Helper()

	hasher, err := cryptox.NewHasher([]byte("test-hash-secret"))
	require.NoError(t, err)
	signer, err := jwtx.NewHS256([]byte("test-token-secret-32-bytes-long!"), "dmsp-auth")
	require.NoError(t, err)

	mem := cache.NewMemory()

	dir := identity.NewDirectory()
	require.NoError(t, dir.Seed(domain.Identity{
		ID:            "subject-1",
		Email:         "sam@example.edu",
		GivenName:     "Sam",
		Surname:       "Rivers",
		Role:          domain.RoleResearcher,
		AffiliationID: "https://ror.org/01cwqze88",
		LanguageID:    "en-US",
	}, "correct-horse", []domain.Grant{
		{ResourceID: "plan-1", AccessLevel: "OWN"},
	}))

	access := &service.AccessTokenIssuer{Signer: signer, Grants: dir, TTL: accessTTL}
	refresh := &service.RefreshTokenIssuer{Signer: signer, Cache: mem, Hasher: hasher, TTL: refreshTTL}
	revoked := &service.RevocationRegistry{Cache: mem}

	router := NewRouter("test", mem, httpx.CookieWriter{}, slogx.New(slogx.Config{
		Service: "auth-test",
		Level:   "error",
		Format:  "text",
	}))
	router.Flows = &service.SessionFlowController{
		Credentials: dir,
		Registrar:   dir,
		Resolver:    dir,
		Access:      access,
		Refresh:     refresh,
		Revoked:     revoked,
	}
	router.CSRF = &service.CSRFGuard{Cache: mem, Hasher: hasher, TTL: 10 * time.Minute}
	router.Revoked = revoked
	router.Metrics = metrics.New()
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar := newCookieJar(t)
	env := &testEnv{
		server: server,
		client: &http.Client{Jar: jar},
		cache:  mem,
	}
	env.prime(t)
	return env
}

// prime fetches an initial CSRF token the way a browser client would.
func (e *testEnv) prime(t *testing.T) {
	t.Helper()

	resp := e.do(t, http.MethodGet, "/v1/auth/csrf", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, e.csrf)
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.csrf != "" {
		req.Header.Set(httpx.CSRFHeader, e.csrf)
	}

	resp, err := e.client.Do(req)
	require.NoError(t, err)

	if fresh := resp.Header.Get(httpx.CSRFHeader); fresh != "" {
		e.csrf = fresh
	}
	return resp
}

func decodeFlow(t *testing.T, resp *http.Response) httpx.FlowResponse {
	t.Helper()
	defer resp.Body.Close()

	var out httpx.FlowResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) cookieValue(t *testing.T, name string) string {
	t.Helper()

	u := mustParseURL(t, e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestSignInFlow(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	t.Run("valid credentials set both cookies", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu", "password": "correct-horse"})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Success)
		require.NotEmpty(t, env.cookieValue(t, httpx.AccessTokenCookie))
		require.NotEmpty(t, env.cookieValue(t, httpx.RefreshTokenCookie))
	})

	t.Run("wrong password is 401 with generic message", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu", "password": "wrong"})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid credentials", out.Message)
	})

	t.Run("unknown account gets the same message", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "nobody@example.edu", "password": "whatever"})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid credentials", out.Message)
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCSRFEnforcement(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	t.Run("mutating request without token is 403", func(t *testing.T) {
		body, err := json.Marshal(map[string]string{
			"email": "sam@example.edu", "password": "correct-horse",
		})
		require.NoError(t, err)

		// Bypass env.do so no CSRF header is attached.
		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/auth/signin", bytes.NewReader(body))
		require.NoError(t, err)
		resp, err := env.client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get(httpx.CSRFHeader), "rejection still carries a fresh token")
	})

	t.Run("token from rejection response works on retry", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/v1/auth/csrf", nil)
		resp.Body.Close()

		resp = env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu", "password": "correct-horse"})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRefreshFlow(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	signIn := func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu", "password": "correct-horse"})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	t.Run("refresh rotates both cookies", func(t *testing.T) {
		signIn(t)
		beforeAccess := env.cookieValue(t, httpx.AccessTokenCookie)
		beforeRefresh := env.cookieValue(t, httpx.RefreshTokenCookie)

		resp := env.do(t, http.MethodPost, "/v1/auth/refresh", nil)
		out := decodeFlow(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Success)

		require.NotEqual(t, beforeAccess, env.cookieValue(t, httpx.AccessTokenCookie))
		require.NotEqual(t, beforeRefresh, env.cookieValue(t, httpx.RefreshTokenCookie))
	})

	t.Run("consecutive refreshes keep the session usable", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/refresh", nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/v1/me", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var me meResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
		require.Equal(t, "subject-1", me.ID)
		require.Equal(t, "sam@example.edu", me.Email)
		require.Len(t, me.Grants, 1)
	})

	t.Run("no refresh cookie is 401", func(t *testing.T) {
		// Fresh client with an empty jar but a valid CSRF token.
		bare := &testEnv{server: env.server, client: &http.Client{Jar: newCookieJar(t)}}
		bare.prime(t)

		resp := bare.do(t, http.MethodPost, "/v1/auth/refresh", nil)
		out := decodeFlow(t, resp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "no refresh token available", out.Message)
	})
}

func TestRefreshExpiry(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Second)

	resp := env.do(t, http.MethodPost, "/v1/auth/signin",
		map[string]string{"email": "sam@example.edu", "password": "correct-horse"})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The cookie jar drops the short-lived cookie on its own, so keep the
	// raw token and resend it by hand after it expires.
	refresh := env.cookieValue(t, httpx.RefreshTokenCookie)
	require.NotEmpty(t, refresh)

	time.Sleep(1100 * time.Millisecond)

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/auth/refresh", nil)
	require.NoError(t, err)
	req.Header.Set(httpx.CSRFHeader, env.csrf)
	req.AddCookie(&http.Cookie{Name: httpx.RefreshTokenCookie, Value: refresh})

	got, err := env.client.Do(req)
	require.NoError(t, err)
	out := decodeFlow(t, got)
	require.Equal(t, http.StatusUnauthorized, got.StatusCode)
	require.Equal(t, "refresh token has expired", out.Message)
}

func TestSignOutFlow(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	signIn := func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signin",
			map[string]string{"email": "sam@example.edu", "password": "correct-horse"})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	t.Run("sign-out clears cookies and revokes", func(t *testing.T) {
		signIn(t)
		require.NotEmpty(t, env.cookieValue(t, httpx.AccessTokenCookie))

		resp := env.do(t, http.MethodPost, "/v1/auth/signout", nil)
		out := decodeFlow(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Success)

		require.Empty(t, env.cookieValue(t, httpx.AccessTokenCookie))
		require.Empty(t, env.cookieValue(t, httpx.RefreshTokenCookie))
	})

	t.Run("revoked token no longer admits", func(t *testing.T) {
		signIn(t)
		access := env.cookieValue(t, httpx.AccessTokenCookie)

		resp := env.do(t, http.MethodPost, "/v1/auth/signout", nil)
		resp.Body.Close()

		// Resend the captured token by hand; the jar no longer has it.
		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/v1/me", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+access)
		got, err := env.client.Do(req)
		require.NoError(t, err)
		defer got.Body.Close()
		require.Equal(t, http.StatusUnauthorized, got.StatusCode)
	})

	t.Run("refresh after sign-out is rejected", func(t *testing.T) {
		signIn(t)
		refresh := env.cookieValue(t, httpx.RefreshTokenCookie)

		resp := env.do(t, http.MethodPost, "/v1/auth/signout", nil)
		resp.Body.Close()

		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/auth/refresh", nil)
		require.NoError(t, err)
		req.Header.Set(httpx.CSRFHeader, env.csrf)
		req.AddCookie(&http.Cookie{Name: httpx.RefreshTokenCookie, Value: refresh})
		got, err := env.client.Do(req)
		require.NoError(t, err)
		defer got.Body.Close()
		require.Equal(t, http.StatusUnauthorized, got.StatusCode)
		if fresh := got.Header.Get(httpx.CSRFHeader); fresh != "" {
			env.csrf = fresh
		}
	})

	t.Run("sign-out without a session is still 200", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signout", nil)
		out := decodeFlow(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, out.Success)
	})
}

func TestSignUpFlow(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	t.Run("valid registration returns a bare token", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signup", map[string]string{
			"email":     "new@example.edu",
			"password":  "long-enough-pass",
			"givenName": "Noor",
			"surName":   "Haddad",
		})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.True(t, out.Success)
		require.NotEmpty(t, out.Token)

		// No session cookies on sign-up.
		require.Empty(t, env.cookieValue(t, httpx.AccessTokenCookie))
		require.Empty(t, env.cookieValue(t, httpx.RefreshTokenCookie))
	})

	t.Run("validation failures list each field", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signup", map[string]string{
			"email":    "not-an-email",
			"password": "short",
		})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.False(t, out.Success)
		require.Contains(t, out.Errors, "email")
		require.Contains(t, out.Errors, "password")
		require.Contains(t, out.Errors, "givenName")
		require.Contains(t, out.Errors, "surName")
	})

	t.Run("duplicate email is a field error", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/v1/auth/signup", map[string]string{
			"email":     "sam@example.edu",
			"password":  "long-enough-pass",
			"givenName": "Sam",
			"surName":   "Rivers",
		})
		out := decodeFlow(t, resp)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, out.Errors, "email")
	})
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, time.Minute, time.Hour)

	t.Run("livez", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/livez", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Equal(t, "ok", out.Status)
	})

	t.Run("readyz reports the cache", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/readyz", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out HealthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.NotNil(t, out.Checks)
		require.Equal(t, "ok", out.Checks.Cache)
	})

	t.Run("metrics exposition", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/metrics", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
