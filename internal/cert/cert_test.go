package cert

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSelfSigned(t *testing.T) {
	b, err := GenerateSelfSigned([]string{"license.internal", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)

	block, _ := pem.Decode(b.CertPEM)
	require.NotNil(t, block)
	c, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "license.internal", c.Subject.CommonName)
	assert.Equal(t, []string{"license.internal"}, c.DNSNames)
	require.Len(t, c.IPAddresses, 1)
	assert.Equal(t, "127.0.0.1", c.IPAddresses[0].String())
	assert.True(t, c.IsCA)

	pool := x509.NewCertPool()
	pool.AddCert(c)
	_, err = c.Verify(x509.VerifyOptions{DNSName: "license.internal", Roots: pool})
	assert.NoError(t, err)

	_, err = tls.X509KeyPair(b.CertPEM, b.KeyPEM)
	assert.NoError(t, err)
}

func TestWriteFiles(t *testing.T) {
	b, err := GenerateSelfSigned(nil, time.Hour)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "tls", "server.crt")
	keyPath := filepath.Join(dir, "tls", "server.key")
	require.NoError(t, b.WriteFiles(certPath, keyPath))

	_, err = tls.LoadX509KeyPair(certPath, keyPath)
	assert.NoError(t, err)
}
