package identity

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/idx"
)

const minPasswordLength = 8

type memoryAccount struct {
	identity     domain.Identity
	passwordHash string
	grants       []domain.Grant
}

// Directory is an in-process identity backend implementing every
// collaborator contract. It backs the standalone binary and the tests;
// production deployments substitute their own user store.
type Directory struct {
	mu       sync.RWMutex
	byEmail  map[string]*memoryAccount
	bySubjID map[string]*memoryAccount
}

func NewDirectory() *Directory {
	return &Directory{
		byEmail:  make(map[string]*memoryAccount),
		bySubjID: make(map[string]*memoryAccount),
	}
}

// Seed adds an identity with a known password and grant set, for tests and
// development bootstrapping.
func (d *Directory) Seed(id domain.Identity, password string, grants []domain.Grant) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	if id.ID == "" {
		id.ID = idx.New().String()
	}

	acct := &memoryAccount{identity: id, passwordHash: hash, grants: grants}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.byEmail[normalizeEmail(id.Email)] = acct
	d.bySubjID[id.ID] = acct
	return nil
}

func (d *Directory) VerifyCredentials(ctx context.Context, email, password string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	acct, ok := d.byEmail[normalizeEmail(email)]
	d.mu.RUnlock()

	if !ok {
		// Burn comparable time so a missing account is not distinguishable
		// from a wrong password by response latency.
		_ = cryptox.VerifyPassword(password, dummyHash)
		return nil, nil
	}

	if err := cryptox.VerifyPassword(password, acct.passwordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, nil
		}
		return nil, err
	}

	id := acct.identity
	return &id, nil
}

func (d *Directory) Resolve(ctx context.Context, subjectID string) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	acct, ok := d.bySubjID[subjectID]
	d.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	id := acct.identity
	return &id, nil
}

func (d *Directory) Register(ctx context.Context, reg Registration) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fieldErrs := validateRegistration(reg)

	d.mu.Lock()
	defer d.mu.Unlock()

	email := normalizeEmail(reg.Email)
	if _, taken := d.byEmail[email]; taken && fieldErrs["email"] == "" {
		fieldErrs["email"] = "already registered"
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	id := domain.Identity{
		ID:            idx.New().String(),
		Email:         email,
		GivenName:     strings.TrimSpace(reg.GivenName),
		Surname:       strings.TrimSpace(reg.Surname),
		Role:          domain.RoleResearcher,
		AffiliationID: strings.TrimSpace(reg.AffiliationID),
		LanguageID:    strings.TrimSpace(reg.LanguageID),
	}

	acct := &memoryAccount{identity: id, passwordHash: hash}
	d.byEmail[email] = acct
	d.bySubjID[id.ID] = acct

	out := id
	return &out, nil
}

func (d *Directory) GrantsFor(ctx context.Context, subjectID string) ([]domain.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	acct, ok := d.bySubjID[subjectID]
	if !ok {
		return nil, nil
	}
	return append([]domain.Grant(nil), acct.grants...), nil
}

func validateRegistration(reg Registration) domain.FieldErrors {
	errs := domain.FieldErrors{}

	email := normalizeEmail(reg.Email)
	if email == "" {
		errs["email"] = "is required"
	} else if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		errs["email"] = "is not a valid address"
	}

	if reg.Password == "" {
		errs["password"] = "is required"
	} else if len(reg.Password) < minPasswordLength {
		errs["password"] = "must be at least 8 characters"
	}

	if strings.TrimSpace(reg.GivenName) == "" {
		errs["givenName"] = "is required"
	}
	if strings.TrimSpace(reg.Surname) == "" {
		errs["surName"] = "is required"
	}

	return errs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// dummyHash is a valid argon2id digest of an unguessable throwaway value,
// used to equalize verification timing for unknown accounts.
var dummyHash = func() string {
	h, err := cryptox.HashPassword(cryptox.MustGenerateToken(cryptox.TokenSize256))
	if err != nil {
		panic(err)
	}
	return h
}()
