package httpx

import (
	"net/http"
	"time"
)

// Cookie names for the token pair.
const (
	AccessTokenCookie  = "dmsp_access"
	RefreshTokenCookie = "dmsp_refresh"
)

// CookieWriter sets and clears the HTTP-only session cookies. Secure is
// enabled everywhere outside local and test environments.
type CookieWriter struct {
	Secure bool
}

func (c CookieWriter) SetTokenPair(w http.ResponseWriter, accessToken, refreshToken string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, accessToken, int(accessTTL.Seconds())))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, refreshToken, int(refreshTTL.Seconds())))
}

func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c CookieWriter) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ReadCookie returns the named cookie's value, or "" when absent.
func ReadCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
