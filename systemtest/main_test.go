package systemtest

import (
	"context"
	"testing"

	internalhttp "github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/auth"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/devices"
	"github.com/EternisAI/silo-license/internal/identity"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/licensing"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/EternisAI/silo-license/systemtest/postgres"
	"github.com/EternisAI/silo-license/systemtest/tests"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret   = "systemtest-secret"
	adminAPIKey = "systemtest-admin-key"
)

func TestSystemIntegration(t *testing.T) {
	ctx := context.Background()
	cfg := db.Config{Url: postgres.URL(t), Schema: "licensing"}

	require.NoError(t, db.Migrate(ctx, cfg))
	pool, err := db.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	st := db.NewStore(pool)
	kp, err := keys.Generate()
	require.NoError(t, err)

	m := metrics.New()
	resolver := identity.NewBearerResolver(jwtSecret, st)
	opts := []licensing.Option{licensing.WithMetrics(m)}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	internalhttp.SetupRoute(engine, internalhttp.Config{AdminAPIKey: adminAPIKey}, &internalhttp.Services{
		Auth:       auth.NewService(st, auth.Config{Secret: jwtSecret}),
		Issuance:   licensing.NewIssuanceService(kp, st, resolver, opts...),
		Validation: licensing.NewValidationService(kp, st, resolver, opts...),
		Revocation: licensing.NewRevocationService(st, resolver, opts...),
		Devices:    devices.NewService(st, resolver, nil, m),
		Admin:      st,
		Health:     st,
		Metrics:    m,
	})

	t.Run("HealthCheck", func(t *testing.T) { tests.TestHealthCheck(t, engine) })
	t.Run("Register", func(t *testing.T) { tests.TestRegister(t, engine, jwtSecret) })
	t.Run("Login", func(t *testing.T) { tests.TestLogin(t, engine, jwtSecret) })
	t.Run("LicenseLifecycle", func(t *testing.T) { tests.TestLicenseLifecycle(t, engine, adminAPIKey) })
	t.Run("Devices", func(t *testing.T) { tests.TestDeviceOwnership(t, engine) })
}
