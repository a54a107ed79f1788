package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/fingerprint"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, kp *keys.KeyPair, fp string, now time.Time) string {
	t.Helper()
	claims := token.Claims{
		LicenseID:         "0b6f1c3e-5d0c-4a57-9a4e-2a8a4c1b7f10",
		UserID:            "5f8e1a2b-3c4d-4e5f-8a9b-0c1d2e3f4a5b",
		Product:           "P",
		Plan:              "basic",
		Features:          domain.Features{},
		DeviceFingerprint: fp,
		IssuedAt:          now.Unix(),
		ExpiresAt:         now.Add(24 * time.Hour).Unix(),
		Nonce:             "3d2a0b4e-1f5c-4e6d-9b7a-8c9d0e1f2a3b",
	}
	tok, err := token.Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)
	return tok
}

func TestCheckOffline(t *testing.T) {
	kp, err := keys.Generate()
	require.NoError(t, err)
	now := time.Now()
	fp := fingerprint.FromSeed("desktop")
	tok := signed(t, kp, fp, now)

	claims, err := checkOffline(tok, kp, fp, now)
	require.NoError(t, err)
	assert.Equal(t, "basic", claims.Plan)

	_, err = checkOffline(tok, kp, fingerprint.FromSeed("laptop"), now)
	assert.ErrorIs(t, err, domain.ErrDeviceMismatch)

	_, err = checkOffline(tok, kp, fp, now.Add(48*time.Hour))
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestClientValidate(t *testing.T) {
	var got validateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/licenses/validate", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		if got.DeviceFingerprint == "revoked" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"License has been revoked","code":"revoked"}`))
			return
		}
		_, _ = w.Write([]byte(`{"message":"License is valid","license":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "abc")

	msg, err := client.Validate(context.Background(), "tok", "fp")
	require.NoError(t, err)
	assert.Equal(t, "License is valid", msg)
	assert.Equal(t, validateRequest{LicenseJWT: "tok", DeviceFingerprint: "fp"}, got)

	_, err = client.Validate(context.Background(), "tok", "revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "License has been revoked")
}
