package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ndelorme/salon-server/internal/store"
)

// ErrInvalidCredentials is returned when email/password don't match an
// account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthToken is the answer to a successful login.
type AuthToken struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// Service issues gateway tokens for known accounts and verifies them on
// behalf of the gateway.
type Service struct {
	store     store.AccountStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(accounts store.AccountStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     accounts,
		jwtConfig: jwtConfig,
	}
}

// Login validates credentials against the account store and returns a signed
// token encoding the account's email and role.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthToken, error) {
	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(account.PasswordHash, password); errPwd != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, account.Email, account.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthToken{AccessToken: token, Role: account.Role, Email: account.Email}, nil
}

// VerifyToken validates a token and returns its claims.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	return VerifyToken(s.jwtConfig, tokenString)
}

// EnsureAccount creates the account when it does not exist yet. Used to seed
// the demo accounts at startup; an existing account is left untouched.
func (s *Service) EnsureAccount(ctx context.Context, email, password, role string) error {
	if existing, err := s.store.GetAccountByEmail(ctx, email); err == nil && existing != nil {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if _, err := s.store.CreateAccount(ctx, email, hash, role); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}
