package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Short-lived access tokens limit the blast radius of a
// leaked token; refresh tokens trade that off for user convenience.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Grant is a capability snapshot entry embedded in access tokens: the plans
// a user may touch and at what level. Grants are computed once at issuance,
// never live-queried per request.
type Grant struct {
	ResourceID  string `json:"resourceId"`
	AccessLevel string `json:"accessLevel"`
}

// AccessClaims are the identity claims carried by a signed access token.
// The jti (RegisteredClaims.ID) is shared with the refresh token issued in
// the same sign-in or refresh cycle; that link is what makes targeted
// revocation and rotation traceable.
type AccessClaims struct {
	jwt.RegisteredClaims

	Email         string  `json:"email,omitempty"`
	GivenName     string  `json:"givenName,omitempty"`
	Surname       string  `json:"surName,omitempty"`
	Role          string  `json:"role,omitempty"`
	AffiliationID string  `json:"affiliationId,omitempty"`
	LanguageID    string  `json:"languageId,omitempty"`
	Grants        []Grant `json:"grants,omitempty"`
}

// NewAccessClaims builds minimally-correct registered claims. Profile fields
// are filled in by the caller.
func NewAccessClaims(subject, jti, issuer string, ttl time.Duration, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: registered(subject, jti, issuer, ttl, now),
	}
}

// RefreshClaims is the minimal payload of a refresh token: just the jti and
// the subject. Everything else is recomputed at refresh time.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

func NewRefreshClaims(subject, jti, issuer string, ttl time.Duration, now time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: registered(subject, jti, issuer, ttl, now),
	}
}

func registered(subject, jti, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
