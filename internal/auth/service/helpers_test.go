package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T) *cryptox.Hasher {
	t.Helper()

	h, err := cryptox.NewHasher([]byte("test-hash-secret"))
	require.NoError(t, err)
	return h
}

func newTestSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()

	s, err := jwtx.NewHS256([]byte("test-token-secret-32-bytes-long!"), "dmsp-auth")
	require.NoError(t, err)
	return s
}

func testIdentity() *domain.Identity {
	return &domain.Identity{
		ID:            "subject-1",
		Email:         "sam@example.edu",
		GivenName:     "Sam",
		Surname:       "Rivers",
		Role:          domain.RoleResearcher,
		AffiliationID: "https://ror.org/01cwqze88",
		LanguageID:    "en-US",
	}
}

// brokenCache fails every operation, simulating a cache outage.
type brokenCache struct{}

var errCacheDown = errors.New("connection refused")

func (brokenCache) Get(context.Context, string) (string, error) { return "", errCacheDown }
func (brokenCache) Set(context.Context, string, string, time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error { return errCacheDown }
func (brokenCache) Ping(context.Context) error           { return errCacheDown }
func (brokenCache) Close() error                         { return nil }

var _ cache.Cache = brokenCache{}

// staticGrants returns a fixed grant list, or an error when broken.
type staticGrants struct {
	grants []domain.Grant
	err    error
}

func (s staticGrants) GrantsFor(context.Context, string) ([]domain.Grant, error) {
	return s.grants, s.err
}
