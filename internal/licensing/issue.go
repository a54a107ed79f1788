package licensing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/identity"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/internal/store"
	"github.com/EternisAI/silo-license/internal/token"
)

const (
	secondsPerDay = 24 * 60 * 60

	// MaxExpiresInDays caps license lifetime at one hundred years.
	MaxExpiresInDays = 36500
)

type IssueRequest struct {
	Product           string
	Plan              string
	Features          domain.Features
	DeviceFingerprint string
	ExpiresInDays     int
}

func (r IssueRequest) validate() error {
	var missing []string
	if r.Product == "" {
		missing = append(missing, "product")
	}
	if r.Plan == "" {
		missing = append(missing, "plan")
	}
	if r.Features == nil {
		missing = append(missing, "features")
	}
	if r.DeviceFingerprint == "" {
		missing = append(missing, "device_fingerprint")
	}
	if r.ExpiresInDays <= 0 || r.ExpiresInDays > MaxExpiresInDays {
		missing = append(missing, "expires_in_days")
	}
	if len(missing) > 0 {
		return domain.Wrap(domain.ErrInvalidInput, fmt.Errorf("missing or invalid: %s", strings.Join(missing, ", ")))
	}
	return nil
}

type Issued struct {
	Token   string
	License domain.License
}

type IssuanceService struct {
	keys     *keys.KeyPair
	licenses store.Licenses
	identity identity.Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

func NewIssuanceService(kp *keys.KeyPair, licenses store.Licenses, resolver identity.Resolver, opts ...Option) *IssuanceService {
	o := buildOptions(opts)
	return &IssuanceService{
		keys:     kp,
		licenses: licenses,
		identity: resolver,
		logger:   o.logger,
		metrics:  o.metrics,
		now:      o.now,
		newID:    o.newID,
	}
}

// Issue signs a new license for the caller and records it. The token is only
// returned once the row is stored; identical requests yield distinct licenses.
func (s *IssuanceService) Issue(ctx context.Context, credential string, req IssueRequest) (Issued, error) {
	caller, err := s.identity.Resolve(ctx, credential)
	if err != nil {
		return Issued{}, err
	}
	if err := req.validate(); err != nil {
		return Issued{}, err
	}

	issuedAt := s.now().Unix()
	license := domain.License{
		ID:                s.newID(),
		UserID:            caller.ID,
		Product:           req.Product,
		Plan:              req.Plan,
		Features:          req.Features,
		DeviceFingerprint: req.DeviceFingerprint,
		IssuedAt:          issuedAt,
		ExpiresAt:         issuedAt + int64(req.ExpiresInDays)*secondsPerDay,
		Nonce:             s.newID(),
		IsActive:          true,
	}

	signed, err := token.Sign(token.ClaimsFromLicense(license), s.keys.Private(), license.ExpiresAt)
	if err != nil {
		s.logger.Error("Failed to sign license", "license_id", license.ID, "error", err)
		return Issued{}, domain.Wrap(domain.ErrIssuanceFailed, err)
	}
	license.Signature = signed

	stored, err := s.licenses.CreateLicense(ctx, license)
	if err != nil {
		s.logger.Error("Failed to persist issued license", "license_id", license.ID, "user_id", caller.ID, "error", err)
		return Issued{}, domain.Wrap(domain.ErrIssuanceFailed, err)
	}

	s.metrics.LicenseIssued()
	s.logger.Info("License issued",
		"license_id", stored.ID,
		"user_id", caller.ID,
		"product", stored.Product,
		"plan", stored.Plan,
		"expires_at", stored.ExpiresAt)

	return Issued{Token: signed, License: stored}, nil
}
