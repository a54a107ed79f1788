package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	internalhttp "github.com/EternisAI/silo-license/internal/api/http"
	"github.com/EternisAI/silo-license/internal/auth"
	"github.com/EternisAI/silo-license/internal/cache"
	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/devices"
	grpcserver "github.com/EternisAI/silo-license/internal/grpc/server"
	"github.com/EternisAI/silo-license/internal/identity"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/licensing"
	"github.com/EternisAI/silo-license/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var AppVersion string

func main() {
	InitConfig()

	slog.Info("Silo License Server", "version", AppVersion)

	if config.Jwt.Secret == "" {
		slog.Error("jwt.secret is required")
		os.Exit(1)
	}

	ctx := context.Background()

	keyPair, err := keys.Load(config.Keys)
	if err != nil {
		slog.Error("Failed to load signing keys", "error", err)
		os.Exit(1)
	}
	if !keyPair.CanSign() {
		slog.Warn("No private signing key configured, license issuance will fail")
	}

	if err := db.Migrate(ctx, config.Db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	pool, err := db.Connect(ctx, config.Db)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	st := db.NewStore(pool)
	m := metrics.New()
	logger := slog.Default()
	resolver := identity.NewBearerResolver(config.Jwt.Secret, st)

	opts := []licensing.Option{
		licensing.WithLogger(logger),
		licensing.WithMetrics(m),
	}

	if config.Redis.Url != "" {
		client, err := cache.Connect(ctx, config.Redis.Url)
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		opts = append(opts, licensing.WithRevocationIndex(cache.NewRevocationCache(client, st, logger)))
	}

	grpcSrv := grpcserver.NewServer(config.Grpc.Port, &grpcserver.TLSConfig{
		Enabled:    config.Grpc.TLS.Enabled,
		CertFile:   config.Grpc.TLS.CertFile,
		KeyFile:    config.Grpc.TLS.KeyFile,
		CAFile:     config.Grpc.TLS.CAFile,
		ClientAuth: config.Grpc.TLS.ClientAuth,
	})

	services := &internalhttp.Services{
		Auth:       auth.NewService(st, config.Jwt),
		Issuance:   licensing.NewIssuanceService(keyPair, st, resolver, opts...),
		Validation: licensing.NewValidationService(keyPair, st, resolver, opts...),
		Revocation: licensing.NewRevocationService(st, resolver, opts...),
		Devices:    devices.NewService(st, resolver, logger, m),
		Admin:      st,
		Health:     st,
		Metrics:    m,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	engine.Use(gin.Recovery())
	internalhttp.SetupRoute(engine, config.Http, services)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Http.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		slog.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	go func() {
		if err := grpcSrv.Start(); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	grpcSrv.SetServing(true)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		slog.Error("Server error", "error", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig)
	}

	slog.Info("Shutting down servers...")
	grpcSrv.SetServing(false)

	var wg sync.WaitGroup
	shutdownTimeout := 10 * time.Second

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped")
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcSrv.StopWithTimeout(shutdownTimeout); err != nil {
			slog.Error("gRPC server shutdown error", "error", err)
		}
	}()

	wg.Wait()
	slog.Info("Shutdown complete")
}
