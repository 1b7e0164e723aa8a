package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/identity"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/idx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

// SessionFlowController orchestrates the four externally visible session
// operations over the token components. It is the only layer that turns
// component sentinels into flow-level outcomes; the HTTP layer above it only
// maps outcomes to status codes and cookies.
//
// Session states: ANONYMOUS -> AUTHENTICATED -> (REFRESHING) ->
// AUTHENTICATED -> SIGNED_OUT.
type SessionFlowController struct {
	Credentials identity.Verifier
	Registrar   identity.Registrar
	Resolver    identity.Resolver

	Access  *AccessTokenIssuer
	Refresh *RefreshTokenIssuer
	Revoked *RevocationRegistry
}

// SignIn verifies credentials and, on success, issues an access+refresh pair
// sharing a fresh jti. A credential mismatch is ErrInvalidCredentials;
// issuance problems are ErrUnavailable.
func (f *SessionFlowController) SignIn(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	id, err := f.Credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: credential verifier: %w", ErrUnavailable, err)
	}
	if id == nil {
		slogx.FromContext(ctx).Debug("sign-in rejected")
		return nil, ErrInvalidCredentials
	}

	return f.issuePair(ctx, id)
}

// SignUp delegates identity creation and issues a bare access token for the
// new identity - no refresh token, no session cookies. Validation failures
// surface as domain.FieldErrors; a created identity whose token generation
// fails is ErrUnavailable.
func (f *SessionFlowController) SignUp(ctx context.Context, reg identity.Registration) (string, *domain.Identity, error) {
	id, err := f.Registrar.Register(ctx, reg)
	if err != nil {
		return "", nil, err
	}

	token, err := f.Access.Issue(ctx, id, idx.New().String())
	if err != nil {
		return "", nil, fmt.Errorf("%w: signing access token: %w", ErrUnavailable, err)
	}

	return token, id, nil
}

// RefreshSession rotates a verified refresh token into a new pair under a
// new jti. The old jti is never reused; its cache record ages out on its own
// TTL. Concurrent refreshes from the same client may both succeed - the
// client keeps whichever pair it processes last.
func (f *SessionFlowController) RefreshSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := f.Refresh.Verify(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	id, err := f.Resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving subject: %w", ErrUnavailable, err)
	}
	if id == nil {
		// Account gone since the token was minted.
		return nil, ErrInvalidRefresh
	}

	return f.issuePair(ctx, id)
}

// SignOut revokes the presented access token's jti and drops its refresh
// record. An invalid, expired, or already-revoked access token is
// ErrInvalidAccess; callers still clear cookies regardless of outcome.
func (f *SessionFlowController) SignOut(ctx context.Context, accessToken string) error {
	claims, ok := f.Access.Verify(accessToken)
	if !ok {
		return ErrInvalidAccess
	}
	if f.Revoked.IsRevoked(ctx, claims.ID) {
		return ErrInvalidAccess
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := f.Revoked.Revoke(ctx, claims.ID, remaining); err != nil {
		return err
	}

	// Best effort: a refresh record that survives sign-out still ages out
	// on its own TTL and can never be replayed once the jti is blacklisted
	// at the gate, but we clean it up explicitly when we can.
	if err := f.Refresh.Drop(ctx, claims.ID); err != nil {
		slogx.FromContext(ctx).Warn("failed to drop refresh record at sign-out",
			"jti", claims.ID, "err", err)
	}

	return nil
}

// issuePair mints a fresh jti and the access+refresh pair that shares it.
// The refresh-record write inside Refresh.Issue completes before this
// returns, so a pair handed to the caller is always rotatable.
func (f *SessionFlowController) issuePair(ctx context.Context, id *domain.Identity) (*domain.TokenPair, error) {
	jti := idx.New().String()

	access, err := f.Access.Issue(ctx, id, jti)
	if err != nil {
		return nil, fmt.Errorf("%w: signing access token: %w", ErrUnavailable, err)
	}

	refresh, err := f.Refresh.Issue(ctx, id.ID, jti)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		JTI:          jti,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    f.Access.TTL,
		RefreshTTL:   f.Refresh.TTL,
	}, nil
}
