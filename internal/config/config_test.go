package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: memory
jwt:
  secret: s3cret
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "dry_run", cfg.SMS.Provider)
	assert.Equal(t, "tr", cfg.SMS.Language)
	assert.Equal(t, "/tr/verify-otp", cfg.Gate.VerifyPath)
	assert.Equal(t, DefaultAllowedRoutes, cfg.Gate.AllowedRoutes)
	assert.Equal(t, 10*time.Second, cfg.Gate.IssueLockTTL)
	assert.False(t, cfg.Gate.FailClosed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  url: postgres://file
sms:
  provider: mobizon
  timeout: 3s
  mobizon:
    api_key: from-file
jwt:
  secret: file
`)
	t.Setenv("PHONEGATE_DATABASE_URL", "postgres://env")
	t.Setenv("PHONEGATE_MOBIZON_API_KEY", "from-env")
	t.Setenv("PHONEGATE_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.SMS.Mobizon.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.SMS.Timeout)
}

func TestLoad_MissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("PHONEGATE_DATABASE_DRIVER", "memory")
	t.Setenv("PHONEGATE_JWT_SECRET", "x")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
sms:
  provider: mobilpark
gate:
  verify_path: verify
`)
	_, err := Load(path)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "database.url is required")
	assert.Contains(t, msg, "sms.mobilpark.username and password are required")
	assert.Contains(t, msg, "gate.verify_path must be absolute")
	assert.Contains(t, msg, "jwt.secret is required")
}
