package domain

import (
	"time"
)

// Features is the opaque capability payload embedded in a license. The
// licensing core transports it verbatim and never interprets its keys.
type Features map[string]any

type Account struct {
	ID        string
	Username  string
	Role      string
	CreatedAt time.Time
}

type License struct {
	ID                string
	UserID            string
	Product           string
	Plan              string
	Features          Features
	DeviceFingerprint string
	IssuedAt          int64
	ExpiresAt         int64
	Nonce             string
	Signature         string
	IsActive          bool
	CreatedAt         time.Time
}

type Device struct {
	ID          string
	UserID      string
	Fingerprint string
	Name        string
	LastSeen    *time.Time
	CreatedAt   time.Time
}

type RevocationRecord struct {
	ID        string
	LicenseID string
	RevokedBy string
	Reason    string
	RevokedAt time.Time
}

type AuditRecord struct {
	ID        string
	UserID    string // empty when the caller was anonymous
	EventType string
	EntityID  string
	Details   map[string]any
	IPAddress string
	CreatedAt time.Time
}

const (
	AuditLicenseValidation = "license_validation"

	DefaultRevocationReason = "User requested revocation"
)
