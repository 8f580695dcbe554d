package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/ndelorme/salon-server/internal/store/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return NewService(st, testJWTConfig())
}

func TestLoginHappyPath(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureAccount(ctx, "admin@example.com", "admin123", "admin"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	token, err := svc.Login(ctx, "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.Role != "admin" || token.Email != "admin@example.com" {
		t.Fatalf("unexpected auth token: %+v", token)
	}

	claims, err := svc.VerifyToken(token.AccessToken)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureAccount(ctx, "user@example.com", "user123", "user"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	if _, err := svc.Login(ctx, "user@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "user123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestEnsureAccountIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureAccount(ctx, "user@example.com", "user123", "user"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	// A second seed with a different password leaves the account untouched.
	if err := svc.EnsureAccount(ctx, "user@example.com", "changed", "user"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	if _, err := svc.Login(ctx, "user@example.com", "user123"); err != nil {
		t.Fatalf("original password should still work: %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := ComparePassword(hash, "secret123"); err != nil {
		t.Fatalf("compare password: %v", err)
	}
	if err := ComparePassword(hash, "other"); err == nil {
		t.Fatal("wrong password must not compare")
	}
}
