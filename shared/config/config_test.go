package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFolder(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o644))
	return dir
}

func TestMustLoad(t *testing.T) {
	public := `
server:
  port: 9000
  jwt_ttl: 3600000000000
pg:
  host: localhost
  port: 5432
  user: drafthook
  dbname: drafthook
dispatch:
  max_retries: 5
  footer: custom
history:
  base_url: http://localhost:9000
  cache_path: /tmp/history.json
log:
  level: debug
  json: true
`
	private := `
pg_password: secret
jwt_key: signing-key
logging_webhook: https://hooks.example/audit
api_token: token123
`
	cfg := MustLoad(writeConfigFolder(t, public, private))

	assert.Equal(t, 9000, cfg.Public.Server.Port)
	assert.Equal(t, time.Hour, cfg.Public.Server.JwtTTL)
	assert.Equal(t, "localhost", cfg.Public.Pg.Host)
	assert.Equal(t, 5, cfg.Public.Dispatch.MaxRetries)
	assert.Equal(t, "custom", cfg.Public.Dispatch.Footer)
	assert.Equal(t, "http://localhost:9000", cfg.Public.History.BaseURL)
	assert.Equal(t, "debug", cfg.Public.Log.Level)
	assert.True(t, cfg.Public.Log.JSON)

	assert.Equal(t, "secret", cfg.PgPassword())
	assert.Equal(t, "signing-key", cfg.JwtKey())
	assert.Equal(t, "https://hooks.example/audit", cfg.LoggingWebhook())
	assert.Equal(t, "token123", cfg.ApiToken())
}

func TestMustLoadDefaults(t *testing.T) {
	cfg := MustLoad(writeConfigFolder(t, "", ""))

	d := cfg.Public.Dispatch
	assert.Equal(t, 10000, d.RequestTimeoutMs)
	assert.Equal(t, 3, d.MaxRetries)
	assert.Equal(t, 2000, d.RateLimitPadMs)
	assert.Equal(t, 1000, d.ItemDelayMs)
	assert.Equal(t, 2500, d.DestinationDelayMs)
	assert.Equal(t, 1000, d.AuditDelayMs)
	assert.Equal(t, "drafthook", d.Footer)
	assert.Equal(t, 8090, cfg.Public.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Public.Server.JwtTTL)
}

func TestMustLoadMissingFilePanics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}
