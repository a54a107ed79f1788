package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// mapError translates driver errors into store sentinels.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return store.ErrDuplicate
		case foreignKeyViolation:
			return store.ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) CreateAccount(ctx context.Context, username, passwordHash, role string) (domain.Account, error) {
	const q = `INSERT INTO accounts (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, role, created_at`

	var a domain.Account
	err := s.pool.QueryRow(ctx, q, username, passwordHash, role).
		Scan(&a.ID, &a.Username, &a.Role, &a.CreatedAt)
	if err != nil {
		return domain.Account{}, mapError("create account", err)
	}
	return a, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	if !validID(id) {
		return domain.Account{}, store.ErrNotFound
	}

	const q = `SELECT id, username, role, created_at FROM accounts WHERE id = $1`

	var a domain.Account
	if err := s.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Username, &a.Role, &a.CreatedAt); err != nil {
		return domain.Account{}, mapError("get account", err)
	}
	return a, nil
}

func (s *Store) GetCredentials(ctx context.Context, username string) (domain.Account, string, error) {
	const q = `SELECT id, username, role, created_at, password_hash FROM accounts WHERE username = $1`

	var (
		a    domain.Account
		hash string
	)
	if err := s.pool.QueryRow(ctx, q, username).Scan(&a.ID, &a.Username, &a.Role, &a.CreatedAt, &hash); err != nil {
		return domain.Account{}, "", mapError("get credentials", err)
	}
	return a, hash, nil
}

const licenseColumns = `id, user_id, product, plan, features, device_fingerprint,
	issued_at, expires_at, nonce, signature, is_active, created_at`

func scanLicense(row pgx.Row) (domain.License, error) {
	var l domain.License
	err := row.Scan(&l.ID, &l.UserID, &l.Product, &l.Plan, &l.Features, &l.DeviceFingerprint,
		&l.IssuedAt, &l.ExpiresAt, &l.Nonce, &l.Signature, &l.IsActive, &l.CreatedAt)
	return l, err
}

func (s *Store) CreateLicense(ctx context.Context, l domain.License) (domain.License, error) {
	features := l.Features
	if features == nil {
		features = domain.Features{}
	}

	q := `INSERT INTO licenses (id, user_id, product, plan, features, device_fingerprint,
			issued_at, expires_at, nonce, signature, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + licenseColumns

	created, err := scanLicense(s.pool.QueryRow(ctx, q,
		l.ID, l.UserID, l.Product, l.Plan, features, l.DeviceFingerprint,
		l.IssuedAt, l.ExpiresAt, l.Nonce, l.Signature, l.IsActive))
	if err != nil {
		return domain.License{}, mapError("create license", err)
	}
	return created, nil
}

func (s *Store) GetLicense(ctx context.Context, id string) (domain.License, error) {
	if !validID(id) {
		return domain.License{}, store.ErrNotFound
	}

	l, err := scanLicense(s.pool.QueryRow(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE id = $1`, id))
	if err != nil {
		return domain.License{}, mapError("get license", err)
	}
	return l, nil
}

func (s *Store) SetLicenseActive(ctx context.Context, id string, active bool) error {
	if !validID(id) {
		return store.ErrNotFound
	}

	tag, err := s.pool.Exec(ctx, `UPDATE licenses SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return mapError("set license active", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateRevocation(ctx context.Context, r domain.RevocationRecord) (domain.RevocationRecord, error) {
	if !validID(r.LicenseID) {
		return domain.RevocationRecord{}, store.ErrNotFound
	}

	const q = `INSERT INTO revoked_licenses (license_id, user_id, reason)
		VALUES ($1, $2, $3)
		RETURNING id, license_id, user_id, reason, revoked_at`

	var out domain.RevocationRecord
	err := s.pool.QueryRow(ctx, q, r.LicenseID, r.RevokedBy, r.Reason).
		Scan(&out.ID, &out.LicenseID, &out.RevokedBy, &out.Reason, &out.RevokedAt)
	if err != nil {
		return domain.RevocationRecord{}, mapError("create revocation", err)
	}
	return out, nil
}

func (s *Store) GetRevocation(ctx context.Context, licenseID string) (domain.RevocationRecord, error) {
	if !validID(licenseID) {
		return domain.RevocationRecord{}, store.ErrNotFound
	}

	const q = `SELECT id, license_id, user_id, reason, revoked_at
		FROM revoked_licenses WHERE license_id = $1`

	var out domain.RevocationRecord
	err := s.pool.QueryRow(ctx, q, licenseID).
		Scan(&out.ID, &out.LicenseID, &out.RevokedBy, &out.Reason, &out.RevokedAt)
	if err != nil {
		return domain.RevocationRecord{}, mapError("get revocation", err)
	}
	return out, nil
}

func scanDevice(row pgx.Row) (domain.Device, error) {
	var (
		d    domain.Device
		name *string
	)
	if err := row.Scan(&d.ID, &d.UserID, &d.Fingerprint, &name, &d.LastSeen, &d.CreatedAt); err != nil {
		return domain.Device{}, err
	}
	if name != nil {
		d.Name = *name
	}
	return d, nil
}

func (s *Store) CreateDevice(ctx context.Context, d domain.Device) (domain.Device, error) {
	const q = `INSERT INTO devices (user_id, fingerprint, name, last_seen)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, fingerprint, name, last_seen, created_at`

	created, err := scanDevice(s.pool.QueryRow(ctx, q, d.UserID, d.Fingerprint, nullable(d.Name), d.LastSeen))
	if err != nil {
		return domain.Device{}, mapError("create device", err)
	}
	return created, nil
}

func (s *Store) GetDeviceByFingerprint(ctx context.Context, fingerprint string) (domain.Device, error) {
	const q = `SELECT id, user_id, fingerprint, name, last_seen, created_at
		FROM devices WHERE fingerprint = $1`

	d, err := scanDevice(s.pool.QueryRow(ctx, q, fingerprint))
	if err != nil {
		return domain.Device{}, mapError("get device", err)
	}
	return d, nil
}

func (s *Store) TouchDevice(ctx context.Context, fingerprint string, seen time.Time) error {
	if _, err := s.pool.Exec(ctx, `UPDATE devices SET last_seen = $2 WHERE fingerprint = $1`, fingerprint, seen); err != nil {
		return mapError("touch device", err)
	}
	return nil
}

func (s *Store) AppendAudit(ctx context.Context, r domain.AuditRecord) error {
	details := r.Details
	if details == nil {
		details = map[string]any{}
	}

	var entity any
	if validID(r.EntityID) {
		entity = r.EntityID
	}

	const q = `INSERT INTO audit_logs (user_id, event_type, entity_id, details, ip_address)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := s.pool.Exec(ctx, q, nullable(r.UserID), r.EventType, entity, details, nullable(r.IPAddress)); err != nil {
		return mapError("append audit", err)
	}
	return nil
}
