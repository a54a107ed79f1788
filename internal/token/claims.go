package token

import (
	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the license payload carried inside a signed token. The embedded
// registered claims hold the envelope iat/exp; every other field mirrors the
// stored license row.
type Claims struct {
	LicenseID         string          `json:"license_id"`
	UserID            string          `json:"user_id"`
	Product           string          `json:"product"`
	Plan              string          `json:"plan"`
	Features          domain.Features `json:"features"`
	DeviceFingerprint string          `json:"device_fingerprint"`
	IssuedAt          int64           `json:"issued_at"`
	ExpiresAt         int64           `json:"expires_at"`
	Nonce             string          `json:"nonce"`
	jwt.RegisteredClaims
}

// ClaimsFromLicense builds the claim set for a license row.
func ClaimsFromLicense(l domain.License) Claims {
	return Claims{
		LicenseID:         l.ID,
		UserID:            l.UserID,
		Product:           l.Product,
		Plan:              l.Plan,
		Features:          l.Features,
		DeviceFingerprint: l.DeviceFingerprint,
		IssuedAt:          l.IssuedAt,
		ExpiresAt:         l.ExpiresAt,
		Nonce:             l.Nonce,
	}
}
