package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":        "www.example:8000",
		"database_dsn":              "postgres://db",
		"secret_key":                "my_secret_key",
		"session_validity_duration": "2h",
		"session_cookie_secure":     true,
		"allowed_origins":           []string{"https://apply.example"},
		"request_timeout":           int64(5 * time.Second),
		"blob_backend":              "s3",
		"s3_bucket":                 "bucket",
		"s3_prefix":                 "intake",
		"login_rate_per_minute":     3,
		"seed_users":                false,
		"seeds": []map[string]any{
			{"email": "ops@example.com", "password": "pw", "is_admin": true},
		},
		"debug_endpoints": true,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.SessionValidityDuration)
		assert.True(t, cfg.SessionCookieSecure)
		assert.Equal(t, []string{"https://apply.example"}, cfg.AllowedOrigins)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "intake", cfg.S3Prefix)
		assert.Equal(t, 3, cfg.LoginRatePerMinute)
		assert.False(t, cfg.SeedUsers)
		require.Len(t, cfg.Seeds, 1)
		assert.Equal(t, SeedUser{Email: "ops@example.com", Password: "pw", IsAdmin: true}, cfg.Seeds[0])
		assert.True(t, cfg.DebugEndpoints)
	})

	t.Run("absent keys keep previous values", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, "uploads", cfg.UploadDir)
		assert.Equal(t, 5, cfg.LoginBurst)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:        "defaults:1234",
			DatabaseDSN:             "db",
			SecretKey:               "key",
			SessionValidityDuration: 2 * time.Minute,
			S3Bucket:                "s3bucket",
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.SessionValidityDuration)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
