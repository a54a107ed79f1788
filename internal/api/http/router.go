package http

import (
	"github.com/EternisAI/silo-license/internal/api/http/handler"
	"github.com/EternisAI/silo-license/internal/api/http/middleware"
	"github.com/EternisAI/silo-license/internal/auth"
	"github.com/EternisAI/silo-license/internal/devices"
	"github.com/EternisAI/silo-license/internal/licensing"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Auth       *auth.Service
	Issuance   *licensing.IssuanceService
	Validation *licensing.ValidationService
	Revocation *licensing.RevocationService
	Devices    *devices.Service
	Admin      handler.AdminStore
	Health     handler.Pinger
	Metrics    *metrics.Metrics
}

func SetupRoute(engine *gin.Engine, cfg Config, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Health)
	engine.GET("/health", healthHandler.Check)

	if srvs.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(srvs.Metrics.Handler()))
	}

	authHandler := handler.NewAuthHandler(srvs.Auth)
	authGroup := engine.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := engine.Group("/", middleware.BearerCredential(), middleware.ClientAddress())

	licenseHandler := handler.NewLicenseHandler(srvs.Issuance, srvs.Validation, srvs.Revocation)
	api.POST("/licenses/issue", licenseHandler.Issue)
	api.POST("/licenses/validate", licenseHandler.Validate)
	api.POST("/licenses/revoke", licenseHandler.Revoke)

	deviceHandler := handler.NewDeviceHandler(srvs.Devices)
	api.POST("/devices/register", deviceHandler.Register)

	if srvs.Admin != nil {
		adminHandler := handler.NewAdminHandler(srvs.Admin)
		admin := engine.Group("/admin", middleware.APIKeyAuth(cfg.AdminAPIKey))
		admin.GET("/licenses/:id", adminHandler.GetLicense)
	}
}
