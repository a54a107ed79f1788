package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/google/uuid"
)

type account struct {
	domain.Account
	passwordHash string
}

// Memory is a Store kept in process memory. It enforces the same uniqueness
// rules as the database schema and is safe for concurrent use.
type Memory struct {
	mu          sync.Mutex
	now         func() time.Time
	accounts    map[string]account
	usernames   map[string]string
	licenses    map[string]domain.License
	revocations map[string]domain.RevocationRecord
	devices     map[string]domain.Device
	audit       []domain.AuditRecord
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:         time.Now,
		accounts:    map[string]account{},
		usernames:   map[string]string{},
		licenses:    map[string]domain.License{},
		revocations: map[string]domain.RevocationRecord{},
		devices:     map[string]domain.Device{},
	}
}

func (m *Memory) CreateAccount(_ context.Context, username, passwordHash, role string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usernames[username]; ok {
		return domain.Account{}, ErrDuplicate
	}
	a := domain.Account{
		ID:        uuid.NewString(),
		Username:  username,
		Role:      role,
		CreatedAt: m.now(),
	}
	m.accounts[a.ID] = account{Account: a, passwordHash: passwordHash}
	m.usernames[username] = a.ID
	return a, nil
}

func (m *Memory) GetAccountByID(_ context.Context, id string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return domain.Account{}, ErrNotFound
	}
	return a.Account, nil
}

func (m *Memory) GetCredentials(_ context.Context, username string) (domain.Account, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.usernames[username]
	if !ok {
		return domain.Account{}, "", ErrNotFound
	}
	a := m.accounts[id]
	return a.Account, a.passwordHash, nil
}

func (m *Memory) CreateLicense(_ context.Context, l domain.License) (domain.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[l.UserID]; !ok {
		return domain.License{}, ErrNotFound
	}
	if _, ok := m.licenses[l.ID]; ok {
		return domain.License{}, ErrDuplicate
	}
	l.Features = maps.Clone(l.Features)
	l.CreatedAt = m.now()
	m.licenses[l.ID] = l
	return l, nil
}

func (m *Memory) GetLicense(_ context.Context, id string) (domain.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.licenses[id]
	if !ok {
		return domain.License{}, ErrNotFound
	}
	l.Features = maps.Clone(l.Features)
	return l, nil
}

func (m *Memory) SetLicenseActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.licenses[id]
	if !ok {
		return ErrNotFound
	}
	l.IsActive = active
	m.licenses[id] = l
	return nil
}

func (m *Memory) CreateRevocation(_ context.Context, r domain.RevocationRecord) (domain.RevocationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.licenses[r.LicenseID]; !ok {
		return domain.RevocationRecord{}, ErrNotFound
	}
	if _, ok := m.revocations[r.LicenseID]; ok {
		return domain.RevocationRecord{}, ErrDuplicate
	}
	r.ID = uuid.NewString()
	r.RevokedAt = m.now()
	m.revocations[r.LicenseID] = r
	return r, nil
}

func (m *Memory) GetRevocation(_ context.Context, licenseID string) (domain.RevocationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.revocations[licenseID]
	if !ok {
		return domain.RevocationRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *Memory) CreateDevice(_ context.Context, d domain.Device) (domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[d.UserID]; !ok {
		return domain.Device{}, ErrNotFound
	}
	if _, ok := m.devices[d.Fingerprint]; ok {
		return domain.Device{}, ErrDuplicate
	}
	d.ID = uuid.NewString()
	d.CreatedAt = m.now()
	if d.LastSeen != nil {
		seen := *d.LastSeen
		d.LastSeen = &seen
	}
	m.devices[d.Fingerprint] = d
	return d, nil
}

func (m *Memory) GetDeviceByFingerprint(_ context.Context, fingerprint string) (domain.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.devices[fingerprint]
	if !ok {
		return domain.Device{}, ErrNotFound
	}
	return d, nil
}

// TouchDevice is a no-op for unregistered fingerprints, like an UPDATE that
// matches no rows.
func (m *Memory) TouchDevice(_ context.Context, fingerprint string, seen time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.devices[fingerprint]
	if !ok {
		return nil
	}
	d.LastSeen = &seen
	m.devices[fingerprint] = d
	return nil
}

func (m *Memory) AppendAudit(_ context.Context, r domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = uuid.NewString()
	r.CreatedAt = m.now()
	r.Details = maps.Clone(r.Details)
	m.audit = append(m.audit, r)
	return nil
}

// AuditRecords returns a copy of the audit log.
func (m *Memory) AuditRecords() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.AuditRecord, len(m.audit))
	copy(out, m.audit)
	return out
}

// Counts reports row counts per table, for tests.
func (m *Memory) Counts() (licenses, revocations, devices int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.licenses), len(m.revocations), len(m.devices)
}
