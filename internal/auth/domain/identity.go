package domain

import "sort"

// Role is the enumerated privilege level carried in access tokens.
type Role string

const (
	RoleResearcher Role = "RESEARCHER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// Identity is the opaque identity record returned by the credential
// verifier collaborator. This subsystem never persists identities; it only
// snapshots them into token claims.
type Identity struct {
	ID            string
	Email         string
	GivenName     string
	Surname       string
	Role          Role
	AffiliationID string
	LanguageID    string
}

// FieldErrors aggregates user-correctable validation failures by field.
// It is returned from sign-up and rendered as the 400 response body; it is
// never logged as a failure.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msg := "validation failed:"
	for _, f := range fields {
		msg += " " + f + ": " + fe[f] + ";"
	}
	return msg[:len(msg)-1]
}
