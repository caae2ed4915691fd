package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/tablechat/tablechat/internal/auth/http"
	"github.com/tablechat/tablechat/internal/auth/revocation"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/internal/auth/store/drivers/sqlite"
	"github.com/tablechat/tablechat/pkg/cryptox"
	"github.com/tablechat/tablechat/pkg/jwtx"
	"github.com/tablechat/tablechat/pkg/oidcx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	revocation revocation.Store
	keyManager *jwtx.KeyManager
	cipher     *cryptox.FieldCipher

	// Services
	tokenService    *service.TokenService
	identityService *service.IdentityService
	authService     *service.AuthService

	// Federated login providers by name
	providers map[string]*oidcx.RelyingParty

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	fieldKey, err := cfg.DecodeFieldCipherKey()
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewFieldCipher(fieldKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field cipher: %w", err)
	}
	app.cipher = cipher

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initRevocation(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	keyManager, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	if err := app.initProviders(context.Background()); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Close the revocation store connection
	if err := app.revocation.Close(); err != nil {
		app.logger.Error("error closing revocation store", "error", err)
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRevocation connects to Redis and verifies it is reachable. The service
// fails closed without it, so a dead Redis at startup is fatal.
func (app *Application) initRevocation() error {
	client := redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	rev := revocation.NewRedisStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rev.Ping(ctx); err != nil {
		_ = rev.Close()
		return fmt.Errorf("failed to reach revocation store at %s: %w", app.cfg.RedisAddr, err)
	}

	app.revocation = rev
	app.logger.Info("revocation store connected", "addr", app.cfg.RedisAddr)
	return nil
}

// initProviders runs OIDC discovery for each configured federated login
// provider. Discovery hits the network, so a misconfigured provider is
// surfaced at startup rather than on the first login.
func (app *Application) initProviders(ctx context.Context) error {
	app.providers = make(map[string]*oidcx.RelyingParty, len(app.cfg.Providers))

	for _, pc := range app.cfg.Providers {
		rp, err := oidcx.NewRelyingParty(ctx, pc)
		if err != nil {
			return fmt.Errorf("failed to configure provider %q: %w", pc.Name, err)
		}
		app.providers[pc.Name] = rp
		app.logger.Info("federated login provider configured", "provider", pc.Name, "issuer", pc.IssuerURL)
	}

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Revocation: app.revocation,
		Cipher:     app.cipher,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.identityService = &service.IdentityService{
		Store:  app.db,
		Hasher: cryptox.NewPasswordHasher(app.cfg.Pepper),
	}

	app.authService = &service.AuthService{
		Identity: app.identityService,
		Tokens:   app.tokenService,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		BuildVersion,
		app.db,
		app.revocation,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.IdentityService = app.identityService
	router.AuthService = app.authService
	router.Providers = app.providers
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
