package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

// ErrAuthUnavailable signals that token verification could not be completed
// because a backing store was unreachable. The middleware turns this into a
// 503 rather than a 401 so clients don't discard otherwise-good tokens.
var ErrAuthUnavailable = errors.New("httpx: authentication backend unavailable")

// Authenticator verifies a raw bearer token and returns its claims. The
// subject in the returned claims is the plaintext account id. Implementations
// are expected to check revocation state, wrapping store outages in
// ErrAuthUnavailable.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (jwtx.Claims, error)
}

// AuthnMiddleware resolves the caller's identity from the Authorization
// header. Requests without a bearer token pass through anonymously; the
// authorization middlewares decide whether anonymous access is acceptable
// per route. A token that is present but fails verification is rejected
// immediately with 401.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" {
				// Anonymous request, let authz middleware sort it out.
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "unsupported authorization scheme")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := a.Authenticate(ctx, raw)
			if err != nil {
				if errors.Is(err, ErrAuthUnavailable) {
					log.Error("authentication backend unavailable", "err", err)
					WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "authentication is temporarily unavailable")
					return
				}
				log.Warn("token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRoles, c.Roles)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
