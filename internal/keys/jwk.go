package keys

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	jose "gopkg.in/square/go-jose.v2"
)

func ParsePrivateKeyJWK(raw []byte) (*ecdsa.PrivateKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to parse private key JWK: %w", err)
	}

	priv, ok := jwk.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, ErrUnsupportedKey
	}
	return priv, nil
}

func ParsePublicKeyJWK(raw []byte) (*ecdsa.PublicKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("failed to parse public key JWK: %w", err)
	}

	switch k := jwk.Key.(type) {
	case *ecdsa.PublicKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, nil
	default:
		return nil, ErrUnsupportedKey
	}
}

// MarshalJWK encodes an ECDSA key (public or private) as an ES256 signing JWK.
func MarshalJWK(key any) (string, error) {
	switch key.(type) {
	case *ecdsa.PrivateKey, *ecdsa.PublicKey:
	default:
		return "", ErrUnsupportedKey
	}

	raw, err := json.Marshal(jose.JSONWebKey{
		Key:       key,
		Algorithm: "ES256",
		Use:       "sig",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal JWK: %w", err)
	}
	return string(raw), nil
}
