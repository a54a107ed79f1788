package dto

import (
	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/token"
)

type IssueLicenseRequest struct {
	Product           string          `json:"product"`
	Plan              string          `json:"plan"`
	Features          domain.Features `json:"features"`
	DeviceFingerprint string          `json:"device_fingerprint"`
	ExpiresInDays     int             `json:"expires_in_days"`
}

type IssueLicenseResponse struct {
	License   string `json:"license"`
	LicenseID string `json:"license_id"`
	ExpiresAt int64  `json:"expires_at"`
}

type ValidateLicenseRequest struct {
	LicenseJWT        string `json:"license_jwt"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type ValidateLicenseResponse struct {
	Message string        `json:"message"`
	License *token.Claims `json:"license"`
}

type RevokeLicenseRequest struct {
	LicenseID string `json:"license_id"`
	Reason    string `json:"reason,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
