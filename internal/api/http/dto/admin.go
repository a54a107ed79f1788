package dto

import (
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
)

type RevocationInfo struct {
	RevokedBy string    `json:"revoked_by"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}

type LicenseInfo struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Product           string          `json:"product"`
	Plan              string          `json:"plan"`
	Features          domain.Features `json:"features"`
	DeviceFingerprint string          `json:"device_fingerprint"`
	IssuedAt          int64           `json:"issued_at"`
	ExpiresAt         int64           `json:"expires_at"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	Revocation        *RevocationInfo `json:"revocation"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
