package httpx

import (
	"context"

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeyClaims    ctxKey = "claims"
)

// ClaimsFromContext returns the verified access-token claims attached by the
// authentication middleware, if any.
func ClaimsFromContext(ctx context.Context) (*jwtx.AccessClaims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(*jwtx.AccessClaims)
	return c, ok
}

// SubjectFromContext returns the authenticated subject id, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(CtxKeySubjectID).(string)
	return s, ok
}
