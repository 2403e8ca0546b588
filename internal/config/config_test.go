package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddr_DefaultsByTLS(t *testing.T) {
	plain := &Config{}
	require.Equal(t, ":80", plain.Addr())

	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	require.NoError(t, os.WriteFile(key, []byte("key"), 0o600))

	tls := &Config{TLSCertFile: cert, TLSKeyFile: key}
	require.True(t, tls.TLSEnabled())
	require.Equal(t, ":443", tls.Addr())

	explicit := &Config{Port: "8443", TLSCertFile: cert, TLSKeyFile: key}
	require.Equal(t, ":8443", explicit.Addr())
}

func TestTLSEnabled_MissingFiles(t *testing.T) {
	c := &Config{TLSCertFile: "/nonexistent/cert.pem", TLSKeyFile: "/nonexistent/key.pem"}
	require.False(t, c.TLSEnabled())

	partial := &Config{TLSCertFile: "/nonexistent/cert.pem"}
	require.False(t, partial.TLSEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://example:27017")
	t.Setenv("UPLOAD_DIR", "/var/lib/auranotes")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("PORT", "9000")

	c, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mongodb://example:27017", c.MongoURI)
	require.Equal(t, "/var/lib/auranotes", c.UploadDir)
	require.Equal(t, int64(1024), c.MaxUploadBytes)
	require.Equal(t, ":9000", c.Addr())
}
