package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndelorme/salon-server/internal/auth"
	"github.com/ndelorme/salon-server/internal/config"
	"github.com/ndelorme/salon-server/internal/gateway"
	"github.com/ndelorme/salon-server/internal/store"
	"github.com/ndelorme/salon-server/internal/store/sqlite"
	transporthttp "github.com/ndelorme/salon-server/internal/transport/http"
)

// App wires together the gateway core and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.AccountStore
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("account store initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}

	authService := auth.NewService(st, jwtConfig)
	if err := seedAccounts(authService, cfg); err != nil {
		st.Close()
		return nil, err
	}

	verifier := gateway.VerifierFunc(func(token string) (gateway.Identity, error) {
		claims, err := authService.VerifyToken(token)
		if err != nil {
			return gateway.Identity{}, err
		}
		return gateway.Identity{Email: claims.Email, Role: gateway.Role(claims.Role)}, nil
	})

	gw := gateway.New(gateway.NewRegistry(), gateway.NewDirectory(), verifier, logger)
	server := transporthttp.NewServer(gw, authService, *cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

func seedAccounts(authService *auth.Service, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := authService.EnsureAccount(ctx, cfg.AdminEmail, cfg.AdminPassword, string(gateway.RoleAdmin)); err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	if err := authService.EnsureAccount(ctx, cfg.UserEmail, cfg.UserPassword, string(gateway.RoleUser)); err != nil {
		return fmt.Errorf("seed user account: %w", err)
	}
	return nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes the account store.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
