package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)
	assert.True(t, kp.CanSign())
	assert.Equal(t, elliptic.P256(), kp.Public().Curve)
	assert.True(t, kp.Public().Equal(&kp.Private().PublicKey))
}

func TestPEMRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "keys", "license.key")
	pubPath := filepath.Join(dir, "keys", "license.pub")

	require.NoError(t, WritePrivateKeyPEM(kp.Private(), privPath))
	require.NoError(t, WritePublicKeyPEM(kp.Public(), pubPath))

	loaded, err := Load(Config{PrivateKeyFile: privPath, PublicKeyFile: pubPath})
	require.NoError(t, err)
	assert.True(t, loaded.CanSign())
	assert.True(t, loaded.Private().Equal(kp.Private()))
	assert.True(t, loaded.Public().Equal(kp.Public()))
}

func TestLoadPublicOnly(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	pubPath := filepath.Join(t.TempDir(), "license.pub")
	require.NoError(t, WritePublicKeyPEM(kp.Public(), pubPath))

	loaded, err := Load(Config{PublicKeyFile: pubPath})
	require.NoError(t, err)
	assert.False(t, loaded.CanSign())
	assert.True(t, loaded.Public().Equal(kp.Public()))
}

func TestLoadDerivesPublicFromPrivate(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	jwk, err := MarshalJWK(kp.Private())
	require.NoError(t, err)

	loaded, err := Load(Config{PrivateKeyJWK: jwk})
	require.NoError(t, err)
	assert.True(t, loaded.Public().Equal(kp.Public()))
}

func TestLoadNothingConfigured(t *testing.T) {
	_, err := Load(Config{})
	assert.ErrorIs(t, err, ErrNoKeyMaterial)
}

func TestLoadMismatchedPair(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	privJWK, err := MarshalJWK(a.Private())
	require.NoError(t, err)
	pubJWK, err := MarshalJWK(b.Public())
	require.NoError(t, err)

	_, err = Load(Config{PrivateKeyJWK: privJWK, PublicKeyJWK: pubJWK})
	assert.Error(t, err)
}

func TestJWKRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	privJWK, err := MarshalJWK(kp.Private())
	require.NoError(t, err)
	assert.Contains(t, privJWK, `"crv":"P-256"`)
	assert.Contains(t, privJWK, `"d":`)

	pubJWK, err := MarshalJWK(kp.Public())
	require.NoError(t, err)
	assert.NotContains(t, pubJWK, `"d":`)

	priv, err := ParsePrivateKeyJWK([]byte(privJWK))
	require.NoError(t, err)
	assert.True(t, priv.Equal(kp.Private()))

	pub, err := ParsePublicKeyJWK([]byte(pubJWK))
	require.NoError(t, err)
	assert.True(t, pub.Equal(kp.Public()))

	// a private JWK is also accepted where only the public half is needed
	pub, err = ParsePublicKeyJWK([]byte(privJWK))
	require.NoError(t, err)
	assert.True(t, pub.Equal(kp.Public()))
}

func TestRejectsOtherCurves(t *testing.T) {
	p384, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	_, err = NewKeyPair(p384, nil)
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestMarshalJWKRejectsRSA(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	_, err = MarshalJWK(rsaKey)
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}

func TestParseInvalidJWK(t *testing.T) {
	_, err := ParsePrivateKeyJWK([]byte(`{"kty":"EC"`))
	assert.Error(t, err)

	_, err = ParsePublicKeyJWK([]byte(`not json`))
	assert.Error(t, err)
}
