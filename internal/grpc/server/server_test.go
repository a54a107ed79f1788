package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"path/filepath"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/cert"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T) (*Server, healthpb.HealthClient) {
	t.Helper()

	srv := NewServer(0, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)

	conn, err := grpc.NewClient(srv.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = srv.StopWithTimeout(time.Second)
	})

	return srv, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthLifecycle(t *testing.T) {
	srv, client := startServer(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))

	srv.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))

	srv.SetServing(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
}

func TestStopBeforeStart(t *testing.T) {
	srv := NewServer(0, nil)
	assert.NoError(t, srv.StopWithTimeout(time.Second))
}

func TestStartRejectsBadTLSConfig(t *testing.T) {
	srv := NewServer(0, &TLSConfig{Enabled: true, ClientAuth: "sometimes"})
	assert.Error(t, srv.Start())

	srv = NewServer(0, &TLSConfig{Enabled: true, ClientAuth: "none", CertFile: "missing.crt", KeyFile: "missing.key"})
	assert.Error(t, srv.Start())
}

func TestHealthOverTLS(t *testing.T) {
	b, err := cert.GenerateSelfSigned([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	dir := t.TempDir()
	certFile, keyFile := filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key")
	require.NoError(t, b.WriteFiles(certFile, keyFile))

	srv := NewServer(0, &TLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile, ClientAuth: "none"})
	go func() { _ = srv.Start() }()
	require.Eventually(t, func() bool { return srv.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	t.Cleanup(func() { _ = srv.StopWithTimeout(time.Second) })

	pool := x509.NewCertPool()
	require.True(t, pool.AppendCertsFromPEM(b.CertPEM))
	creds := credentials.NewTLS(&tls.Config{RootCAs: pool, ServerName: "localhost"})

	conn, err := grpc.NewClient(srv.Addr().String(), grpc.WithTransportCredentials(creds))
	require.NoError(t, err)
	defer conn.Close()

	srv.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, healthpb.NewHealthClient(conn), ""))
}
