package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secrets = `
session:
  cookie_secret: "0123456789abcdef0123456789abcdef"
csrf:
  key: "abcdefghijklmnopqrstuvwxyz012345"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(secrets))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "memory", cfg.Session.Driver)
	assert.Equal(t, 72*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "backend", cfg.Upload.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Listing.Debounce)
	assert.Equal(t, time.Minute, cfg.Guestbook.PollInterval)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(secrets + `
server:
  host: 127.0.0.1
  port: 9090
backend:
  base_url: https://api.example.com/api/v1
  timeout: 3s
listing:
  debounce: 250ms
guestbook:
  poll_interval: 30s
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
	assert.Equal(t, "https://api.example.com/api/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Listing.Debounce)
	assert.Equal(t, 30*time.Second, cfg.Guestbook.PollInterval)
}

func TestParse_TrustedOrigins(t *testing.T) {
	cfg, err := Parse([]byte(`
session:
  cookie_secret: "0123456789abcdef0123456789abcdef"
csrf:
  key: "abcdefghijklmnopqrstuvwxyz012345"
  trusted_origins:
    - admin.example.com
    - localhost:3000
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"admin.example.com", "localhost:3000"}, cfg.CSRF.TrustedOrigins)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown session driver", "session:\n  driver: redis\n  cookie_secret: \"0123456789abcdef0123456789abcdef\"\ncsrf:\n  key: \"abcdefghijklmnopqrstuvwxyz012345\"\n"},
		{"s3 without bucket", "upload:\n  driver: s3\n" + secrets},
		{"short cookie secret", "session:\n  cookie_secret: short\ncsrf:\n  key: abcdefghijklmnopqrstuvwxyz012345\n"},
		{"bad yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(secrets), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Session.Driver)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "wp", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wp sslmode=disable", c.DSN())
}
