package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/domain"
	"github.com/EternisAI/silo-license/internal/keys"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims(now time.Time) Claims {
	issued := now.Unix()
	return Claims{
		LicenseID:         "0b6f1c3e-5d0c-4a57-9a4e-2a8a4c1b7f10",
		UserID:            "5f8e1a2b-3c4d-4e5f-8a9b-0c1d2e3f4a5b",
		Product:           "P",
		Plan:              "premium",
		Features:          domain.Features{"export": true, "tier": "gold"},
		DeviceFingerprint: strings.Repeat("ab", 32),
		IssuedAt:          issued,
		ExpiresAt:         issued + 365*86400,
		Nonce:             "3d2a0b4e-1f5c-4e6d-9b7a-8c9d0e1f2a3b",
	}
}

func newKeys(t *testing.T) *keys.KeyPair {
	t.Helper()
	kp, err := keys.Generate()
	require.NoError(t, err)
	return kp
}

func segments(t *testing.T, tok string) [3][]byte {
	t.Helper()
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	var out [3][]byte
	for i, p := range parts {
		b, err := base64.RawURLEncoding.DecodeString(p)
		require.NoError(t, err)
		out[i] = b
	}
	return out
}

func join(segs [3][]byte) string {
	return base64.RawURLEncoding.EncodeToString(segs[0]) + "." +
		base64.RawURLEncoding.EncodeToString(segs[1]) + "." +
		base64.RawURLEncoding.EncodeToString(segs[2])
}

func TestSignVerifyRoundTrip(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	got, err := VerifyAt(tok, kp.Public(), now)
	require.NoError(t, err)

	assert.Equal(t, claims.LicenseID, got.LicenseID)
	assert.Equal(t, claims.UserID, got.UserID)
	assert.Equal(t, claims.Product, got.Product)
	assert.Equal(t, claims.Plan, got.Plan)
	assert.Equal(t, claims.Features, got.Features)
	assert.Equal(t, claims.DeviceFingerprint, got.DeviceFingerprint)
	assert.Equal(t, claims.IssuedAt, got.IssuedAt)
	assert.Equal(t, claims.ExpiresAt, got.ExpiresAt)
	assert.Equal(t, claims.Nonce, got.Nonce)
	require.NotNil(t, got.RegisteredClaims.ExpiresAt)
	assert.Equal(t, claims.ExpiresAt, got.RegisteredClaims.ExpiresAt.Unix())
}

func TestWireFormat(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	segs := segments(t, tok)
	assert.JSONEq(t, `{"alg":"ES256"}`, string(segs[0]))
	assert.Len(t, segs[2], 64, "ES256 signatures are raw r||s")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(segs[1], &payload))

	keysSeen := make([]string, 0, len(payload))
	for k := range payload {
		keysSeen = append(keysSeen, k)
	}
	assert.ElementsMatch(t, []string{
		"license_id", "user_id", "product", "plan", "features", "device_fingerprint",
		"issued_at", "expires_at", "nonce", "iat", "exp",
	}, keysSeen)
	assert.EqualValues(t, claims.ExpiresAt, payload["exp"])
	assert.EqualValues(t, claims.IssuedAt, payload["iat"])
}

func TestVerifyWrongKey(t *testing.T) {
	signer := newKeys(t)
	other := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, signer.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	_, err = VerifyAt(tok, other.Public(), now)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyBitFlips(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)
	orig := segments(t, tok)

	for _, seg := range []int{1, 2} {
		for i := 0; i < len(orig[seg]); i++ {
			for bit := 0; bit < 8; bit += 3 {
				mutated := orig
				buf := append([]byte(nil), orig[seg]...)
				buf[i] ^= 1 << bit
				mutated[seg] = buf

				_, err := VerifyAt(join(mutated), kp.Public(), now)
				require.ErrorIs(t, err, domain.ErrInvalidSignature, "segment %d byte %d bit %d", seg, i, bit)
			}
		}
	}
}

func TestVerifyRejectsEveryTextBitFlip(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	payloadStart := strings.Index(tok, ".") + 1
	for i := payloadStart; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			mutated := []byte(tok)
			mutated[i] ^= 1 << bit

			_, err := VerifyAt(string(mutated), kp.Public(), now)
			require.Error(t, err, "char %d bit %d", i, bit)
		}
	}
}

func TestVerifyRejectsNonCanonicalSignatureEncoding(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	// 64 signature bytes leave four unused low bits in the final symbol
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := strings.IndexByte(alphabet, tok[len(tok)-1])
	require.GreaterOrEqual(t, last, 0)
	mutated := tok[:len(tok)-1] + string(alphabet[last^1])

	_, err = VerifyAt(mutated, kp.Public(), now)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestVerifyExpiredEnvelope(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	// application expiry one day out, envelope backdated one hour
	tok, err := Sign(claims, kp.Private(), now.Add(-time.Hour).Unix())
	require.NoError(t, err)

	_, err = VerifyAt(tok, kp.Public(), now)
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestVerifyExpiredApplicationClaim(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)
	claims.ExpiresAt = now.Add(-time.Minute).Unix()

	// envelope still valid, application claim already past
	tok, err := Sign(claims, kp.Private(), now.Add(time.Hour).Unix())
	require.NoError(t, err)

	_, err = VerifyAt(tok, kp.Public(), now)
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestVerifyExpiresExactlyAtBoundary(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)

	tok, err := Sign(claims, kp.Private(), claims.ExpiresAt)
	require.NoError(t, err)

	_, err = VerifyAt(tok, kp.Public(), time.Unix(claims.ExpiresAt, 0))
	assert.ErrorIs(t, err, domain.ErrExpired)

	_, err = VerifyAt(tok, kp.Public(), time.Unix(claims.ExpiresAt-1, 0))
	assert.NoError(t, err)
}

func TestVerifyMalformed(t *testing.T) {
	kp := newKeys(t)

	cases := map[string]string{
		"empty":           "",
		"two parts":       "abc.def",
		"four parts":      "a.b.c.d",
		"bad header b64":  "!!!.e30.AAAA",
		"header not json": base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".e30.AAAA",
		"bad payload b64": base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"ES256"}`)) + ".***.AAAA",
		"bad sig b64":     base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"ES256"}`)) + ".e30.***",
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := VerifyAt(tok, kp.Public(), time.Now())
			assert.ErrorIs(t, err, domain.ErrMalformedToken)
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	kp := newKeys(t)
	now := time.Now()
	claims := testClaims(now)
	claims.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0))}

	t.Run("HS256", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = VerifyAt(tok, kp.Public(), now)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("none", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = VerifyAt(tok, kp.Public(), now)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})
}

func TestSignWithoutPrivateKey(t *testing.T) {
	_, err := Sign(testClaims(time.Now()), nil, time.Now().Add(time.Hour).Unix())
	assert.ErrorIs(t, err, keys.ErrNoPrivateKey)
}
