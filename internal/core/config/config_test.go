package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_DefaultsAndOverrides(t *testing.T) {
	p := writeConfig(t, `
jwt:
  secret: s3cret
identity:
  bcryptCost: 10
db:
  driver: postgres
  dsn: postgres://u:p@localhost/alumni
`)
	c, err := Read(p)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, "alumni-connect", c.JWT.Issuer)
	assert.Equal(t, 10, c.Identity.BcryptCost)
	assert.Equal(t, 5, c.Identity.MaxIDAttempts)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, 5000, c.App.HTTP.Port)
	assert.Equal(t, 60, c.Cache.DirectoryTTLSec)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORS.AllowOrigins)
}

func TestRead_EnvOverride(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: file-secret\n")
	t.Setenv("APP_JWT_SECRET", "env-secret")
	t.Setenv("APP_IDENTITY_MAXIDATTEMPTS", "3")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.JWT.Secret)
	assert.Equal(t, 3, c.Identity.MaxIDAttempts)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Read(writeConfig(t, "app:\n  name: x\n"))
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLocalConfigFileParses(t *testing.T) {
	c, err := Read("../../../configs/config.local.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DB.Driver)
	assert.Equal(t, 12, c.Identity.BcryptCost)
}
