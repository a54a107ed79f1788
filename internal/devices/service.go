// Package devices binds device fingerprints to accounts.
package devices

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

type Registration struct {
	Device            domain.Device
	AlreadyRegistered bool
}

type Service struct {
	devices  store.Devices
	identity identity.Resolver
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Service)

// WithClock sets the time source used for last_seen on new devices.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(devices store.Devices, resolver identity.Resolver, logger *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		devices:  devices,
		identity: resolver,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register binds fingerprint to the caller. A fingerprint has at most one
// owner: registering it again as the owner returns the existing device
// unchanged, registering it as anyone else is a conflict.
func (s *Service) Register(ctx context.Context, credential, fingerprint, name string) (Registration, error) {
	reg, err := s.register(ctx, credential, fingerprint, name)
	switch {
	case err != nil:
		s.metrics.DeviceRegistration(metrics.Result(err, ""))
	case reg.AlreadyRegistered:
		s.metrics.DeviceRegistration("already_registered")
	default:
		s.metrics.DeviceRegistration("registered")
	}
	return reg, err
}

func (s *Service) register(ctx context.Context, credential, fingerprint, name string) (Registration, error) {
	caller, err := s.identity.Resolve(ctx, credential)
	if err != nil {
		return Registration{}, err
	}
	if fingerprint == "" {
		return Registration{}, domain.Errorf(domain.KindInvalidInput, "Missing device fingerprint")
	}

	now := s.now()
	device, err := s.devices.CreateDevice(ctx, domain.Device{
		UserID:      caller.ID,
		Fingerprint: fingerprint,
		Name:        name,
		LastSeen:    &now,
	})
	if err == nil {
		s.logger.Info("Device registered", "device_id", device.ID, "user_id", caller.ID)
		return Registration{Device: device}, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		s.logger.Error("Failed to register device", "user_id", caller.ID, "error", err)
		return Registration{}, domain.Wrap(domain.ErrStoreFailure, err)
	}

	existing, err := s.devices.GetDeviceByFingerprint(ctx, fingerprint)
	if err != nil {
		s.logger.Error("Failed to fetch existing device", "user_id", caller.ID, "error", err)
		return Registration{}, domain.Wrap(domain.ErrStoreFailure, err)
	}
	if existing.UserID != caller.ID {
		s.logger.Warn("Device fingerprint owned by another account", "user_id", caller.ID, "device_id", existing.ID)
		return Registration{}, domain.ErrFingerprintConflict
	}
	return Registration{Device: existing, AlreadyRegistered: true}, nil
}
