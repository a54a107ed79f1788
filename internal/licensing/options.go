// Package licensing implements the license lifecycle: issuance, online
// validation and revocation. Each service is independent; they share only the
// signing key pair and the store.
package licensing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/internal/store"
	"github.com/google/uuid"
)

// Authorizer decides whether caller may revoke license. It runs in place of
// the plain ownership check.
type Authorizer interface {
	CanRevoke(ctx context.Context, caller domain.Account, license domain.License) bool
}

type AuthorizerFunc func(ctx context.Context, caller domain.Account, license domain.License) bool

func (f AuthorizerFunc) CanRevoke(ctx context.Context, caller domain.Account, license domain.License) bool {
	return f(ctx, caller, license)
}

// OwnerOnly allows only the account that owns the license.
var OwnerOnly = AuthorizerFunc(func(_ context.Context, caller domain.Account, license domain.License) bool {
	return caller.ID != "" && caller.ID == license.UserID
})

// RevocationIndex answers whether a license has been revoked. expiresAt lets
// caching implementations bound how long a positive answer is kept.
type RevocationIndex interface {
	IsRevoked(ctx context.Context, licenseID string, expiresAt time.Time) (bool, error)
}

// RevocationMarker is implemented by indexes that want to learn about new
// revocations as they are recorded.
type RevocationMarker interface {
	MarkRevoked(ctx context.Context, licenseID string, expiresAt time.Time) error
}

// StoreIndex looks revocations up directly in the store.
type StoreIndex struct {
	Revocations store.Revocations
}

func (i StoreIndex) IsRevoked(ctx context.Context, licenseID string, _ time.Time) (bool, error) {
	_, err := i.Revocations.GetRevocation(ctx, licenseID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

type options struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	newID      func() string
	authorizer Authorizer
	index      RevocationIndex
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator replaces the UUIDv4 source for license ids and nonces.
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

func WithAuthorizer(a Authorizer) Option {
	return func(o *options) { o.authorizer = a }
}

// WithRevocationIndex puts idx in front of the store for revocation lookups.
func WithRevocationIndex(idx RevocationIndex) Option {
	return func(o *options) { o.index = idx }
}

func buildOptions(opts []Option) options {
	o := options{
		logger:     slog.Default(),
		now:        time.Now,
		newID:      uuid.NewString,
		authorizer: OwnerOnly,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
