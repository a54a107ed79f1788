package main

import (
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/EternisAI/silo-license/internal/token"
)

// checkOffline runs the checks a disconnected client can make: signature,
// expiry and device binding. Revocation needs the server.
func checkOffline(raw string, kp *keys.KeyPair, fp string, now time.Time) (*token.Claims, error) {
	claims, err := token.VerifyAt(raw, kp.Public(), now)
	if err != nil {
		return nil, err
	}
	if claims.DeviceFingerprint != fp {
		return nil, domain.ErrDeviceMismatch
	}
	return claims, nil
}
