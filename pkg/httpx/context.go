package httpx

import (
	"context"

	"github.com/tablechat/tablechat/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyRoles  ctxKey = "roles"
	CtxKeyClaims ctxKey = "claims" // full jwtx.Claims when you need them
)

// UserIDFromCtx returns the authenticated account id, or "" when the
// request is anonymous.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// RolesFromCtx returns the authenticated caller's roles, nil if anonymous.
func RolesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyRoles).([]string); ok {
		return v
	}
	return nil
}

// ClaimsFromCtx returns the verified token claims, if any.
func ClaimsFromCtx(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

// IsAuthenticated reports whether the request carries a verified identity.
func IsAuthenticated(ctx context.Context) bool {
	return UserIDFromCtx(ctx) != ""
}
