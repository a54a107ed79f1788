package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/fingerprint"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseLifecycle(t *testing.T, router *gin.Engine, adminAPIKey string) {
	owner := login(t, router, "license-owner")
	other := login(t, router, "license-other")
	fp := fingerprint.FromSeed("systemtest-device")

	rr := doJSONWithAuth(router, "POST", "/licenses/issue", dto.IssueLicenseRequest{
		Product:           "P",
		Plan:              "premium",
		Features:          domain.Features{"export": true, "seats": 3},
		DeviceFingerprint: fp,
		ExpiresInDays:     365,
	}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var issued dto.IssueLicenseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &issued))
	require.NotEmpty(t, issued.License)

	validate := func(fp string) int {
		rr := doJSONWithAuth(router, "POST", "/licenses/validate",
			dto.ValidateLicenseRequest{LicenseJWT: issued.License, DeviceFingerprint: fp}, "",
			"X-Forwarded-For", "198.51.100.7")
		return rr.Code
	}

	t.Run("valid on bound device", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, validate(fp))
	})

	t.Run("rejected on another device", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, validate(fingerprint.FromSeed("elsewhere")))
	})

	t.Run("non-owner cannot revoke", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/licenses/revoke", dto.RevokeLicenseRequest{LicenseID: issued.LicenseID}, other)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner revokes idempotently", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/licenses/revoke", dto.RevokeLicenseRequest{LicenseID: issued.LicenseID, Reason: "refund"}, owner)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"License revoked successfully"}`, rr.Body.String())

		rr = doJSONWithAuth(router, "POST", "/licenses/revoke", dto.RevokeLicenseRequest{LicenseID: issued.LicenseID}, owner)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"License already revoked"}`, rr.Body.String())
	})

	t.Run("revoked license fails validation", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/licenses/validate",
			dto.ValidateLicenseRequest{LicenseJWT: issued.License, DeviceFingerprint: fp}, "")
		require.Equal(t, http.StatusForbidden, rr.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, string(domain.KindRevoked), resp.Code)
	})

	t.Run("admin sees revocation", func(t *testing.T) {
		rr := doJSONWithAuth(router, "GET", "/admin/licenses/"+issued.LicenseID, nil, "", "X-API-Key", adminAPIKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var info dto.LicenseInfo
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
		assert.False(t, info.IsActive)
		assert.EqualValues(t, 3, info.Features["seats"])
		require.NotNil(t, info.Revocation)
		assert.Equal(t, "refund", info.Revocation.Reason)
	})

	t.Run("unknown license", func(t *testing.T) {
		rr := doJSONWithAuth(router, "POST", "/licenses/revoke",
			dto.RevokeLicenseRequest{LicenseID: "not-a-uuid"}, owner)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
