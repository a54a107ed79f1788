package auth

import (
	"context"
	"testing"
	"time"

	"github.com/EternisAI/silo-license/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", ExpirationHours: 1, Issuer: "silo-license"}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(store.NewMemory(), testConfig)

	account, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, RoleUser, account.Role)
	assert.NotEmpty(t, account.ID)

	_, err = svc.Register(ctx, "alice", "password456")
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.Register(ctx, "bob", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	token, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	claims, err := ValidateToken(testConfig.Secret, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "silo-license", claims.Issuer)

	_, err = svc.Login(ctx, "alice", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken(testConfig, "user-1", "alice", RoleUser)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateToken("other", token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken(testConfig.Secret, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		signed, err := expired.SignedString([]byte(testConfig.Secret))
		require.NoError(t, err)

		_, err = ValidateToken(testConfig.Secret, signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := GenerateToken(Config{}, "user-1", "alice", RoleUser)
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("password123", hash))
	assert.False(t, CheckPassword("password124", hash))
}
