package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/EternisAI/silo-license/internal/api/http/dto"
	"github.com/EternisAI/silo-license/internal/fingerprint"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceOwnership(t *testing.T, router *gin.Engine) {
	alice := login(t, router, "device-alice")
	bob := login(t, router, "device-bob")
	fp := fingerprint.FromSeed("systemtest-shared")

	rr := doJSONWithAuth(router, "POST", "/devices/register", dto.RegisterDeviceRequest{Fingerprint: fp, Name: "Workstation"}, alice)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var first dto.RegisterDeviceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &first))
	assert.Equal(t, "Workstation", first.Device.Name)
	assert.NotNil(t, first.Device.LastSeen)

	rr = doJSONWithAuth(router, "POST", "/devices/register", dto.RegisterDeviceRequest{Fingerprint: fp}, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	var again dto.RegisterDeviceResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &again))
	assert.Equal(t, first.Device.ID, again.Device.ID)
	assert.Equal(t, "Device already registered for this user", again.Message)

	rr = doJSONWithAuth(router, "POST", "/devices/register", dto.RegisterDeviceRequest{Fingerprint: fp}, bob)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
