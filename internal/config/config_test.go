package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 12*time.Hour, cfg.Shifts.CancellationWindow)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Shifts.StrictValidation)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftdesk.yaml")
	yamlData := `
env: staging
database:
  driver: postgres
  dsn: postgres://a:b@db:5432/shifts?sslmode=disable
rate_limit:
  strategy: token_bucket
  requests: 5
  window: 30s
shifts:
  strict_validation: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	t.Setenv("APP_ENV", "production")
	t.Setenv("RATE_LIMIT_REQUESTS", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "token_bucket", cfg.RateLimit.Strategy)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Shifts.StrictValidation)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_PostgresFromPGEnv(t *testing.T) {
	t.Setenv("PG_HOST", "pg")
	t.Setenv("PG_USER", "u")
	t.Setenv("PG_PASSWORD", "p")
	t.Setenv("PG_DB", "shifts")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@pg:5432/shifts?sslmode=disable", cfg.Database.DSN)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "mysql"
	assert.Error(t, Validate(cfg))

	cfg = DefaultConfig()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, Validate(cfg))

	cfg = DefaultConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = ""
	assert.Error(t, Validate(cfg))

	cfg = DefaultConfig()
	cfg.RateLimit.Requests = 0
	assert.Error(t, Validate(cfg))
}
