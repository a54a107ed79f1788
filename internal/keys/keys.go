// Package keys holds the ES256 signing key pair. A KeyPair is built once at
// startup and shared read-only by the token codec and the services.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrNoKeyMaterial  = errors.New("no license signing key configured")
	ErrNoPrivateKey   = errors.New("license signing private key not configured")
	ErrUnsupportedKey = errors.New("license signing key must be an ECDSA P-256 key")
)

type Config struct {
	PrivateKeyFile string `mapstructure:"private_key_file"`
	PublicKeyFile  string `mapstructure:"public_key_file"`
	PrivateKeyJWK  string `mapstructure:"private_key_jwk"`
	PublicKeyJWK   string `mapstructure:"public_key_jwk"`
}

type KeyPair struct {
	private *ecdsa.PrivateKey
	public  *ecdsa.PublicKey
}

// NewKeyPair wraps existing keys. priv may be nil for a verify-only pair.
func NewKeyPair(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) (*KeyPair, error) {
	if pub == nil && priv != nil {
		pub = &priv.PublicKey
	}
	if pub == nil {
		return nil, ErrNoKeyMaterial
	}
	if pub.Curve != elliptic.P256() {
		return nil, ErrUnsupportedKey
	}
	if priv != nil && !priv.PublicKey.Equal(pub) {
		return nil, errors.New("license signing public key does not match private key")
	}
	return &KeyPair{private: priv, public: pub}, nil
}

// Generate creates a fresh P-256 key pair.
func Generate() (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return &KeyPair{private: priv, public: &priv.PublicKey}, nil
}

// Load builds a KeyPair from configuration. JWK strings take precedence over
// PEM files, mirroring the environment-provided keys of the hosted deployment.
func Load(cfg Config) (*KeyPair, error) {
	var (
		priv *ecdsa.PrivateKey
		pub  *ecdsa.PublicKey
		err  error
	)

	switch {
	case cfg.PrivateKeyJWK != "":
		priv, err = ParsePrivateKeyJWK([]byte(cfg.PrivateKeyJWK))
	case cfg.PrivateKeyFile != "":
		priv, err = LoadPrivateKeyPEM(cfg.PrivateKeyFile)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.PublicKeyJWK != "":
		pub, err = ParsePublicKeyJWK([]byte(cfg.PublicKeyJWK))
	case cfg.PublicKeyFile != "":
		pub, err = LoadPublicKeyPEM(cfg.PublicKeyFile)
	}
	if err != nil {
		return nil, err
	}

	kp, err := NewKeyPair(priv, pub)
	if err != nil {
		return nil, err
	}

	slog.Info("License signing keys loaded", "can_sign", kp.CanSign())
	return kp, nil
}

func (kp *KeyPair) Private() *ecdsa.PrivateKey {
	return kp.private
}

func (kp *KeyPair) Public() *ecdsa.PublicKey {
	return kp.public
}

func (kp *KeyPair) CanSign() bool {
	return kp.private != nil
}
