// Package app assembles the auth service: configuration, cache, token
// components, router, and the HTTP server lifecycle.
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

	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/cache"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/domain"
	httpapi "github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/http"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/identity"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/metrics"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/internal/auth/service"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/cryptox"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/httpx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/idx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/jwtx"
	"github.com/CDLUC3/dmsp-backend-prototype-sub004/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	cache cache.Cache

	flows   *service.SessionFlowController
	csrf    *service.CSRFGuard
	revoked *service.RevocationRegistry

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "dmsp-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.cache.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully stops the HTTP server, then the cache connection.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCache connects to Redis when a URL is configured, otherwise falls
// back to the in-process cache. The in-process cache means sessions do not
// survive a restart and revocations are not shared across replicas.
func (app *Application) initCache() error {
	if app.cfg.RedisURL == "" {
		app.logger.Warn("AUTH_REDIS_URL not set, using in-process token cache")
		app.cache = cache.NewMemory()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRedis(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.cache = c
	app.logger.Info("connected to redis token cache")
	return nil
}

// initServices builds the token components and the flow controller.
func (app *Application) initServices() error {
	hasher, err := cryptox.NewHasher([]byte(app.cfg.HashSecret))
	if err != nil {
		return fmt.Errorf("failed to initialize token hasher: %w", err)
	}

	signer, err := jwtx.NewHS256([]byte(app.cfg.TokenSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	dir := identity.NewDirectory()
	if app.cfg.BootstrapEmail != "" {
		if err := app.seedBootstrapAccount(dir); err != nil {
			return err
		}
	}

	access := &service.AccessTokenIssuer{
		Signer: signer,
		Grants: dir,
		TTL:    app.cfg.AccessTTL,
	}
	refresh := &service.RefreshTokenIssuer{
		Signer: signer,
		Cache:  app.cache,
		Hasher: hasher,
		TTL:    app.cfg.RefreshTTL,
	}
	app.revoked = &service.RevocationRegistry{Cache: app.cache}

	app.flows = &service.SessionFlowController{
		Credentials: dir,
		Registrar:   dir,
		Resolver:    dir,
		Access:      access,
		Refresh:     refresh,
		Revoked:     app.revoked,
	}
	app.csrf = &service.CSRFGuard{
		Cache:  app.cache,
		Hasher: hasher,
		TTL:    app.cfg.CSRFTTL,
	}

	return nil
}

func (app *Application) seedBootstrapAccount(dir *identity.Directory) error {
	if app.cfg.BootstrapPassword == "" {
		return fmt.Errorf("AUTH_BOOTSTRAP_EMAIL is set but AUTH_BOOTSTRAP_PASSWORD is empty")
	}

	err := dir.Seed(domain.Identity{
		ID:    idx.New().String(),
		Email: app.cfg.BootstrapEmail,
		Role:  domain.RoleSuperAdmin,
	}, app.cfg.BootstrapPassword, nil)
	if err != nil {
		return fmt.Errorf("failed to seed bootstrap account: %w", err)
	}

	app.logger.Info("bootstrap account seeded", "email", app.cfg.BootstrapEmail)
	return nil
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(
		BuildVersion,
		app.cache,
		httpx.CookieWriter{Secure: app.cfg.SecureCookies()},
		app.logger,
	)
	app.router.Flows = app.flows
	app.router.CSRF = app.csrf
	app.router.Revoked = app.revoked
	app.router.Metrics = metrics.New()
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
