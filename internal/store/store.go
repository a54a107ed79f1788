// Package store declares the persistence ports used by the licensing services.
// Implementations live in internal/db (PostgreSQL) and in this package (memory).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type Licenses interface {
	CreateLicense(ctx context.Context, l domain.License) (domain.License, error)
	GetLicense(ctx context.Context, id string) (domain.License, error)
	// SetLicenseActive is idempotent; it returns ErrNotFound for an unknown id.
	SetLicenseActive(ctx context.Context, id string, active bool) error
}

type Revocations interface {
	// CreateRevocation returns ErrDuplicate when the license is already revoked.
	CreateRevocation(ctx context.Context, r domain.RevocationRecord) (domain.RevocationRecord, error)
	GetRevocation(ctx context.Context, licenseID string) (domain.RevocationRecord, error)
}

type Devices interface {
	// CreateDevice returns ErrDuplicate when the fingerprint is taken by anyone.
	CreateDevice(ctx context.Context, d domain.Device) (domain.Device, error)
	GetDeviceByFingerprint(ctx context.Context, fingerprint string) (domain.Device, error)
	TouchDevice(ctx context.Context, fingerprint string, seen time.Time) error
}

type Audit interface {
	AppendAudit(ctx context.Context, r domain.AuditRecord) error
}

type Accounts interface {
	// CreateAccount returns ErrDuplicate when the username is taken.
	CreateAccount(ctx context.Context, username, passwordHash, role string) (domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	// GetCredentials returns the account and its password hash.
	GetCredentials(ctx context.Context, username string) (domain.Account, string, error)
}

// Store is everything the server wires together.
type Store interface {
	Licenses
	Revocations
	Devices
	Audit
	Accounts
}
