package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ndelorme/salon-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store implements store.AccountStore on SQLite.
type Store struct {
	db *sql.DB
}

// New opens the database at dbPath and ensures the schema exists.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateAccount inserts an account with an already-hashed password.
func (s *Store) CreateAccount(ctx context.Context, email, passwordHash, role string) (*store.Account, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, role) VALUES (?, ?, ?)`,
		email, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getAccountByID(ctx, id)
}

// GetAccountByEmail returns the account or store.ErrNotFound.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*store.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE email = ?`,
		email,
	)
	return scanAccount(row)
}

func (s *Store) getAccountByID(ctx context.Context, id int64) (*store.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM accounts WHERE id = ?`,
		id,
	)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (*store.Account, error) {
	var account store.Account
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Role, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	return &account, nil
}
