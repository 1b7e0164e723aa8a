// Package service implements the token-lifecycle components: CSRF guard,
// access and refresh token issuers, the revocation registry, and the session
// flow controller that orchestrates them.
//
// Components swallow their own I/O failures and return sentinel values
// except where a caller must tell infrastructure breakage apart from an
// invalid credential; only the flow controller and the HTTP layer translate
// sentinels into user-visible status codes.
package service

import "errors"

var (
	// ErrInvalidCredentials covers both "wrong password" and "no such
	// account"; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidRefresh reports a refresh token that failed verification:
	// bad signature, expired, already rotated, or tampered.
	ErrInvalidRefresh = errors.New("invalid_refresh_token")

	// ErrInvalidAccess reports an access token that failed verification or
	// has been revoked.
	ErrInvalidAccess = errors.New("invalid_access_token")

	// ErrUnavailable reports an infrastructure failure (cache I/O, signing)
	// as opposed to a credential problem. It must never be conflated with
	// "token not found".
	ErrUnavailable = errors.New("auth_unavailable")
)
