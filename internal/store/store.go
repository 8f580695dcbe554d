package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an account does not exist.
var ErrNotFound = errors.New("not found")

// Account is a login account able to obtain gateway tokens. The store holds
// only accounts; rooms, membership and messages live in the gateway and are
// never persisted.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// AccountStore persists login accounts.
type AccountStore interface {
	// CreateAccount inserts an account with an already-hashed password.
	CreateAccount(ctx context.Context, email, passwordHash, role string) (*Account, error)
	// GetAccountByEmail returns the account or ErrNotFound.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	// Close releases the underlying resources.
	Close() error
}
