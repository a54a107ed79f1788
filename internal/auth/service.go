// Package auth is the first-party identity provider: account registration,
// password login and HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/store"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

type Service struct {
	accounts store.Accounts
	config   Config
}

func NewService(accounts store.Accounts, config Config) *Service {
	return &Service{
		accounts: accounts,
		config:   config,
	}
}

func (s *Service) Register(ctx context.Context, username, password string) (domain.Account, error) {
	if len(password) < MinPasswordLength {
		return domain.Account{}, ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := s.accounts.CreateAccount(ctx, username, hash, RoleUser)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Account{}, ErrUsernameExists
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	slog.Info("Account registered", "user_id", account.ID, "username", account.Username)
	return account, nil
}

// Login checks the password and returns a bearer token for the account.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	account, hash, err := s.accounts.GetCredentials(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("query account: %w", err)
	}

	if !CheckPassword(password, hash) {
		return "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.config, account.ID, account.Username, account.Role)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}
