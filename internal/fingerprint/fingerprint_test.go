package fingerprint

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSeed(t *testing.T) {
	a := FromSeed("test-device-seed")
	assert.Equal(t, a, FromSeed("test-device-seed"))
	assert.Len(t, a, Length)
	assert.True(t, Valid(a))

	assert.NotEqual(t, FromSeed("device1"), FromSeed("device2"))

	for _, seed := range []string{"", "device-with-special-chars-!@#$%^&*()", "device-with-unicode-测试", "spaces and\ttabs"} {
		assert.True(t, Valid(FromSeed(seed)), seed)
	}

	// sha256("")
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", FromSeed(""))
}

func TestGenerateOrderIndependent(t *testing.T) {
	a := Generate(map[string]string{"os": "linux", "arch": "amd64", "host_id": "abc"})
	b := Generate(map[string]string{"host_id": "abc", "os": "linux", "arch": "amd64"})
	assert.Equal(t, a, b)

	c := Generate(map[string]string{"host_id": "abd", "os": "linux", "arch": "amd64"})
	assert.NotEqual(t, a, c)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(strings.Repeat("a", 64)))
	assert.True(t, Valid(strings.Repeat("AF", 32)))

	assert.False(t, Valid(""))
	assert.False(t, Valid(strings.Repeat("a", 63)))
	assert.False(t, Valid(strings.Repeat("a", 65)))
	assert.False(t, Valid(strings.Repeat("g", 64)))
	assert.False(t, Valid(" "+strings.Repeat("a", 63)))
}

func TestLocalIsStable(t *testing.T) {
	first, err := Local(context.Background())
	require.NoError(t, err)
	second, err := Local(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, Valid(first))
}
