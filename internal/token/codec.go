// Package token builds and verifies signed license tokens.
//
// A license token is a compact JWS: base64url(header) "." base64url(payload)
// "." base64url(signature), signed with ES256. Verification needs only the
// public key and a clock, so it runs unchanged inside a disconnected client.
package token

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/golang-jwt/jwt/v5"
)

const Algorithm = "ES256"

var signingMethod = jwt.SigningMethodES256

// Sign serializes claims into a token whose envelope expiry is expiresAt.
func Sign(claims Claims, key *ecdsa.PrivateKey, expiresAt int64) (string, error) {
	if key == nil {
		return "", keys.ErrNoPrivateKey
	}

	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
		ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
	}

	t := jwt.NewWithClaims(signingMethod, claims)
	// header is exactly {"alg":"ES256"} for compatibility with issued tokens
	delete(t.Header, "typ")

	return t.SignedString(key)
}

// Verify checks structure, signature and expiry of tokenString against the
// current time.
func Verify(tokenString string, key *ecdsa.PublicKey) (*Claims, error) {
	return VerifyAt(tokenString, key, time.Now())
}

// VerifyAt is Verify with an explicit clock. The signature is checked before
// any claim is trusted; expiry is checked against both the envelope exp and
// the application expires_at claim.
func VerifyAt(tokenString string, key *ecdsa.PublicKey, now time.Time) (*Claims, error) {
	if key == nil {
		return nil, domain.Wrap(domain.ErrInvalidSignature, keys.ErrNoKeyMaterial)
	}

	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, domain.ErrMalformedToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	headerJSON, err := parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, domain.Wrap(domain.ErrMalformedToken, err)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, domain.Wrap(domain.ErrMalformedToken, err)
	}
	if header.Alg != Algorithm {
		return nil, domain.Errorf(domain.KindInvalidSignature, "unsupported signing algorithm %q", header.Alg)
	}

	if _, err := parser.DecodeSegment(parts[1]); err != nil {
		return nil, domain.Wrap(domain.ErrMalformedToken, err)
	}
	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, domain.Wrap(domain.ErrMalformedToken, err)
	}

	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, key); err != nil {
		return nil, domain.Wrap(domain.ErrInvalidSignature, err)
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		// signed by us but not a claim set we understand
		return nil, domain.Wrap(domain.ErrMalformedToken, err)
	}

	validator := jwt.NewValidator(
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err := validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Wrap(domain.ErrExpired, err)
		}
		return nil, domain.Wrap(domain.ErrInvalidSignature, err)
	}

	if now.Unix() >= claims.ExpiresAt {
		return nil, domain.ErrExpired
	}

	return claims, nil
}
