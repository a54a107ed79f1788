package licensing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/identity"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/internal/store"
	"github.com/EternisAI/silo-license/internal/token"
)

type ValidateRequest struct {
	Token             string
	DeviceFingerprint string
	// Credential is optional; when it resolves, the audit record names the caller.
	Credential string
	IPAddress  string
}

// ValidationStore is the subset of the store online validation touches.
type ValidationStore interface {
	store.Licenses
	store.Revocations
	store.Devices
	store.Audit
}

type ValidationService struct {
	keys     *keys.KeyPair
	store    ValidationStore
	index    RevocationIndex
	identity identity.Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewValidationService(kp *keys.KeyPair, st ValidationStore, resolver identity.Resolver, opts ...Option) *ValidationService {
	o := buildOptions(opts)
	index := o.index
	if index == nil {
		index = StoreIndex{Revocations: st}
	}
	return &ValidationService{
		keys:     kp,
		store:    st,
		index:    index,
		identity: resolver,
		logger:   o.logger,
		metrics:  o.metrics,
		now:      o.now,
	}
}

// Validate runs the online checks in order and reports the first failure:
// signature and expiry, device binding, revocation, active flag. On success
// it refreshes the device's last_seen and appends an audit record; failures
// of those two writes are logged and ignored.
func (s *ValidationService) Validate(ctx context.Context, req ValidateRequest) (*token.Claims, error) {
	claims, err := s.validate(ctx, req)
	s.metrics.Validation(err)
	return claims, err
}

func (s *ValidationService) validate(ctx context.Context, req ValidateRequest) (*token.Claims, error) {
	if req.Token == "" || req.DeviceFingerprint == "" {
		return nil, domain.Errorf(domain.KindInvalidInput, "Missing required fields: license_jwt or device_fingerprint")
	}

	now := s.now()

	claims, err := token.VerifyAt(req.Token, s.keys.Public(), now)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedToken) {
			// offline-tampered and unparseable tokens look the same to clients
			return nil, domain.Wrap(domain.ErrInvalidSignature, err)
		}
		return nil, err
	}

	if claims.DeviceFingerprint != req.DeviceFingerprint {
		return nil, domain.ErrDeviceMismatch
	}

	revoked, err := s.index.IsRevoked(ctx, claims.LicenseID, time.Unix(claims.ExpiresAt, 0))
	if err != nil {
		s.logger.Error("Failed to check revocation list", "license_id", claims.LicenseID, "error", err)
		return nil, domain.Wrap(domain.ErrStoreFailure, err)
	}
	if revoked {
		return nil, domain.ErrRevoked
	}

	license, err := s.store.GetLicense(ctx, claims.LicenseID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("Failed to load license row", "license_id", claims.LicenseID, "error", err)
		}
		return nil, domain.Wrap(domain.ErrInactive, err)
	}
	if !license.IsActive {
		return nil, domain.ErrInactive
	}

	s.recordSuccess(ctx, req, claims, now)
	return claims, nil
}

func (s *ValidationService) recordSuccess(ctx context.Context, req ValidateRequest, claims *token.Claims, now time.Time) {
	if err := s.store.TouchDevice(ctx, req.DeviceFingerprint, now); err != nil {
		s.logger.Warn("Failed to update device last_seen", "fingerprint", req.DeviceFingerprint, "error", err)
	}

	var callerID string
	if req.Credential != "" {
		if caller, err := s.identity.Resolve(ctx, req.Credential); err == nil {
			callerID = caller.ID
		}
	}

	record := domain.AuditRecord{
		UserID:    callerID,
		EventType: domain.AuditLicenseValidation,
		EntityID:  claims.LicenseID,
		Details: map[string]any{
			"license_id":         claims.LicenseID,
			"device_fingerprint": req.DeviceFingerprint,
		},
		IPAddress: req.IPAddress,
	}
	if err := s.store.AppendAudit(ctx, record); err != nil {
		s.logger.Warn("Failed to write validation audit record", "license_id", claims.LicenseID, "error", err)
	}
}
