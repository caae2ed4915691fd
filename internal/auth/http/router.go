package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tablechat/tablechat/internal/auth/revocation"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/pkg/httpx"
	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/oidcx"
	"github.com/tablechat/tablechat/pkg/slogx"

	_ "github.com/tablechat/tablechat/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store      store.Store
	revocation revocation.Store

	AuthService     *service.AuthService
	IdentityService *service.IdentityService
	TokenService    *service.TokenService

	// Providers are the configured federated login providers by name.
	Providers map[string]*oidcx.RelyingParty
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	st store.Store,
	rev revocation.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		revocation:   rev,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMembers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TableChat Authentication Service API
//	@version		0.1.0
//	@description	Stateless authentication service issuing EdDSA-signed JWT access/refresh token pairs,
//	@description	with Redis-backed revocation and federated login via OpenID Connect providers.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn builds the identity-resolution middleware backed by the token
// service. It runs only on routes that need an identity; the public routes
// below never touch token verification.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(&tokenAuthenticator{tokens: r.TokenService})
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit (authentication attempts)
	loginHandler := &LoginHandler{Auth: r.AuthService}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/reissue - strict rate limit, token comes from headers not
	// an identity, so no authn middleware here
	reissueHandler := &ReissueHandler{Auth: r.AuthService}
	r.Mux.Handle("POST /auth/reissue",
		httpx.Chain(reissueHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit, accepts dead tokens so it
	// stays public too
	logoutHandler := &LogoutHandler{Auth: r.AuthService}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Federated login legs
	federated := &FederatedHandler{Auth: r.AuthService, Providers: r.Providers}
	r.Mux.Handle("GET /auth/oauth2/{provider}",
		httpx.Chain(http.HandlerFunc(federated.HandleRedirect),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /auth/oauth2/callback/{provider}",
		httpx.Chain(http.HandlerFunc(federated.HandleCallback),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerMembers() {
	// POST /members/join - strict rate limit (account creation)
	joinHandler := &JoinHandler{Identity: r.IdentityService}
	r.Mux.Handle("POST /members/join",
		httpx.Chain(joinHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Availability probes stay public for signup forms
	emailCheck := &EmailCheckHandler{Identity: r.IdentityService}
	r.Mux.Handle("GET /members/email-check/{email}",
		httpx.Chain(emailCheck,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	nicknameCheck := &NicknameCheckHandler{Identity: r.IdentityService}
	r.Mux.Handle("GET /members/nickname-check/{nickname}",
		httpx.Chain(nicknameCheck,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /members/me - any authenticated member
	meHandler := &MeHandler{Store: r.store}
	r.Mux.Handle("GET /members/me",
		httpx.Chain(meHandler,
			r.authn(),
			httpx.RequireAuthenticated(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /members - admins only
	listHandler := &ListMembersHandler{Store: r.store}
	r.Mux.Handle("GET /members",
		httpx.Chain(listHandler,
			r.authn(),
			httpx.RequireAnyRole("ADMIN"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Root stays public and anonymous, a bare service banner.
	r.Mux.Handle("GET /{$}",
		httpx.Chain(RootHandler(r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.revocation, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

// tokenAuthenticator adapts TokenService.VerifyAccess to httpx.Authenticator,
// translating revocation-store outages so the middleware can answer 503.
type tokenAuthenticator struct {
	tokens *service.TokenService
}

func (a *tokenAuthenticator) Authenticate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := a.tokens.VerifyAccess(ctx, token)
	if err != nil {
		if errors.Is(err, revocation.ErrUnavailable) {
			return jwtx.Claims{}, fmt.Errorf("%w: %w", httpx.ErrAuthUnavailable, err)
		}
		return jwtx.Claims{}, err
	}
	return claims, nil
}
