package licensing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/identity"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/internal/store"
)

// RevocationStore is the subset of the store revocation touches.
type RevocationStore interface {
	store.Licenses
	store.Revocations
}

type Revocation struct {
	Record         domain.RevocationRecord
	AlreadyRevoked bool
}

type RevocationService struct {
	store      RevocationStore
	identity   identity.Resolver
	authorizer Authorizer
	marker     RevocationMarker
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func NewRevocationService(st RevocationStore, resolver identity.Resolver, opts ...Option) *RevocationService {
	o := buildOptions(opts)
	s := &RevocationService{
		store:      st,
		identity:   resolver,
		authorizer: o.authorizer,
		logger:     o.logger,
		metrics:    o.metrics,
	}
	if m, ok := o.index.(RevocationMarker); ok {
		s.marker = m
	}
	return s
}

// Revoke records a revocation and clears the active flag. Both writes are
// idempotent, so revoking twice succeeds and a retry repairs a half-applied
// revocation.
func (s *RevocationService) Revoke(ctx context.Context, credential, licenseID, reason string) (Revocation, error) {
	res, err := s.revoke(ctx, credential, licenseID, reason)
	switch {
	case err != nil:
		s.metrics.Revocation(metrics.Result(err, ""))
	case res.AlreadyRevoked:
		s.metrics.Revocation("already_revoked")
	default:
		s.metrics.Revocation("revoked")
	}
	return res, err
}

func (s *RevocationService) revoke(ctx context.Context, credential, licenseID, reason string) (Revocation, error) {
	caller, err := s.identity.Resolve(ctx, credential)
	if err != nil {
		return Revocation{}, err
	}
	if licenseID == "" {
		return Revocation{}, domain.Errorf(domain.KindInvalidInput, "Missing license_id")
	}
	if reason == "" {
		reason = domain.DefaultRevocationReason
	}

	license, err := s.store.GetLicense(ctx, licenseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Revocation{}, domain.Errorf(domain.KindNotFound, "License not found or unauthorized")
		}
		return Revocation{}, domain.Wrap(domain.ErrStoreFailure, err)
	}

	if !s.authorizer.CanRevoke(ctx, caller, license) {
		s.logger.Warn("Revocation denied", "license_id", licenseID, "user_id", caller.ID)
		return Revocation{}, domain.Errorf(domain.KindForbidden, "Unauthorized to revoke this license")
	}

	var res Revocation
	record, err := s.store.CreateRevocation(ctx, domain.RevocationRecord{
		LicenseID: licenseID,
		RevokedBy: caller.ID,
		Reason:    reason,
	})
	switch {
	case err == nil:
		res.Record = record
	case errors.Is(err, store.ErrDuplicate):
		res.AlreadyRevoked = true
		if existing, err := s.store.GetRevocation(ctx, licenseID); err == nil {
			res.Record = existing
		}
	default:
		s.logger.Error("Failed to record revocation", "license_id", licenseID, "error", err)
		return Revocation{}, domain.Wrap(domain.ErrStoreFailure, err)
	}

	if s.marker != nil {
		if err := s.marker.MarkRevoked(ctx, licenseID, time.Unix(license.ExpiresAt, 0)); err != nil {
			s.logger.Warn("Failed to cache revocation", "license_id", licenseID, "error", err)
		}
	}

	if err := s.store.SetLicenseActive(ctx, licenseID, false); err != nil {
		// the revocation record alone already rejects the license
		s.logger.Error("Failed to deactivate revoked license", "license_id", licenseID, "error", err)
		return Revocation{}, domain.Wrap(domain.ErrStoreFailure, err)
	}

	if res.AlreadyRevoked {
		s.logger.Info("License already revoked", "license_id", licenseID, "user_id", caller.ID)
	} else {
		s.logger.Info("License revoked", "license_id", licenseID, "user_id", caller.ID, "reason", reason)
	}
	return res, nil
}
