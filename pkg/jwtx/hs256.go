package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret = errors.New("jwtx: signing secret must not be empty")

	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// HS256 signs and verifies tokens with a single symmetric secret. Signing
// and verification are CPU-only; neither touches any store, so both stay
// cheap to call on every request.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 returns a signer/verifier keyed with secret. A missing secret is
// a fatal configuration error surfaced at construction time.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &HS256{secret: append([]byte(nil), secret...), issuer: issuer}, nil
}

// Issuer returns the configured issuer claim value.
func (s *HS256) Issuer() string { return s.issuer }

// SignAccess serializes and signs access-token claims.
func (s *HS256) SignAccess(claims AccessClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// SignRefresh serializes and signs refresh-token claims.
func (s *HS256) SignRefresh(claims RefreshClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseAccess verifies signature, expiry, and issuer, returning the claims.
func (s *HS256) ParseAccess(token string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// ParseRefresh verifies signature, expiry, and issuer, returning the claims.
func (s *HS256) ParseRefresh(token string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := s.parse(token, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (s *HS256) parse(token string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
