// Package identity declares the collaborator contracts the session flows
// depend on. Identity storage itself lives outside this subsystem; the flows
// only need to verify credentials, create accounts, resolve subjects, and
// snapshot plan grants at token-issuance time.
package identity

import (
	"context"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
)

// Verifier checks raw credentials against the identity store. A credential
// mismatch returns (nil, nil) - not an error - so callers cannot distinguish
// "wrong password" from "no such account".
type Verifier interface {
	VerifyCredentials(ctx context.Context, email, password string) (*domain.Identity, error)
}

// Resolver looks up an identity by its subject id, used during refresh to
// rebuild access-token claims. A missing subject returns (nil, nil).
type Resolver interface {
	Resolve(ctx context.Context, subjectID string) (*domain.Identity, error)
}

// Registration is the sign-up input.
type Registration struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	GivenName     string `json:"givenName"`
	Surname       string `json:"surName"`
	AffiliationID string `json:"affiliationId"`
	LanguageID    string `json:"languageId"`
}

// Registrar creates a new identity. Validation failures come back as
// domain.FieldErrors; anything else is an infrastructure error.
type Registrar interface {
	Register(ctx context.Context, reg Registration) (*domain.Identity, error)
}

// GrantSource computes the capability snapshot embedded in access tokens:
// which plans the subject may touch and at what level. Lookups are best
// effort - issuance degrades to an empty grant list when the source fails.
type GrantSource interface {
	GrantsFor(ctx context.Context, subjectID string) ([]domain.Grant, error)
}
