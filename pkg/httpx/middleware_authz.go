package httpx

import (
	"net/http"
	"strings"
)

// RequireAuthenticated rejects anonymous requests with 401. Identity comes
// from AuthnMiddleware, which must run earlier in the chain.
func RequireAuthenticated() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tablechat"`)
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole the caller must hold at least one of the provided roles.
// Anonymous callers get 401, authenticated callers without the role get 403.
func RequireAnyRole(required ...string) Middleware {
	want := make(map[string]struct{}, len(required))
	for _, role := range required {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tablechat"`)
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}

			for _, role := range RolesFromCtx(r.Context()) {
				if _, ok := want[role]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeRoleError(w, required...)
		})
	}
}

// RequireAllRoles the caller must hold every role listed.
func RequireAllRoles(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAuthenticated(r.Context()) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="tablechat"`)
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
				return
			}

			have := make(map[string]struct{})
			for _, role := range RolesFromCtx(r.Context()) {
				have[role] = struct{}{}
			}
			for _, req := range required {
				if _, ok := have[req]; !ok {
					writeRoleError(w, required...)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// 403 with the required roles spelled out, in the RFC 6750 insufficient
// scope style.
func writeRoleError(w http.ResponseWriter, required ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteError(w, http.StatusForbidden, "forbidden", "missing required role")
}
