// Package identity answers "who is calling" for the licensing services.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/EternisAI/silo-license/internal/auth"
	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/store"
)

// Resolver turns a bearer credential into the account it belongs to. It
// returns an error matching domain.ErrUnauthenticated when the credential is
// empty, invalid or names an account that no longer exists.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (domain.Account, error)
}

// BearerResolver validates tokens issued by the auth service and confirms the
// account is still present.
type BearerResolver struct {
	secret   string
	accounts store.Accounts
}

func NewBearerResolver(secret string, accounts store.Accounts) *BearerResolver {
	return &BearerResolver{secret: secret, accounts: accounts}
}

func (r *BearerResolver) Resolve(ctx context.Context, credential string) (domain.Account, error) {
	if credential == "" {
		return domain.Account{}, domain.ErrUnauthenticated
	}

	claims, err := auth.ValidateToken(r.secret, credential)
	if err != nil {
		return domain.Account{}, domain.Wrap(domain.ErrUnauthenticated, err)
	}

	account, err := r.accounts.GetAccountByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, domain.ErrUnauthenticated
		}
		return domain.Account{}, domain.Wrap(domain.ErrStoreFailure, fmt.Errorf("lookup account: %w", err))
	}
	return account, nil
}

// Static resolves a fixed set of credentials, for tests and tooling.
type Static map[string]domain.Account

func (s Static) Resolve(_ context.Context, credential string) (domain.Account, error) {
	a, ok := s[credential]
	if !ok || credential == "" {
		return domain.Account{}, domain.ErrUnauthenticated
	}
	return a, nil
}
