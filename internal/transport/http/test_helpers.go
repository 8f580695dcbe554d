package http

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndelorme/salon-server/internal/auth"
	"github.com/ndelorme/salon-server/internal/config"
	"github.com/ndelorme/salon-server/internal/gateway"
	"github.com/ndelorme/salon-server/internal/store/sqlite"
)

// createTestAuthService builds an auth service over an in-memory store,
// seeded with the two demo accounts.
func createTestAuthService(t *testing.T, jwtSecret string) *auth.Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}
	svc := auth.NewService(st, jwtConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.EnsureAccount(ctx, "admin@example.com", "admin123", "admin"); err != nil {
		t.Fatalf("seed admin account: %v", err)
	}
	if err := svc.EnsureAccount(ctx, "user@example.com", "user123", "user"); err != nil {
		t.Fatalf("seed user account: %v", err)
	}

	return svc
}

// createTestGateway wires a gateway whose verifier is backed by the auth
// service.
func createTestGateway(t *testing.T, authService *auth.Service) *gateway.Gateway {
	t.Helper()

	logger := zerolog.Nop()
	verifier := gateway.VerifierFunc(func(token string) (gateway.Identity, error) {
		claims, err := authService.VerifyToken(token)
		if err != nil {
			return gateway.Identity{}, err
		}
		return gateway.Identity{Email: claims.Email, Role: gateway.Role(claims.Role)}, nil
	})
	return gateway.New(gateway.NewRegistry(), gateway.NewDirectory(), verifier, &logger)
}

func testConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
}
