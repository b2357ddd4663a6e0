package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `
log:
  level: error
jwt:
  secret: test-secret
db:
  driver: sqlite
  dsn: "file:` + filepath.Join(dir, "admin.db") + `"
  autoMigrate: true
  logLevel: silent
identity:
  bcryptCost: 4
`
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(cfg), 0o600))
	return p
}

func execute(args ...string) (string, string, error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCreateAdmin(t *testing.T) {
	cfg := writeConfig(t)

	out, _, err := execute("--config", cfg, "--email", "Root@Example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "email=root@example.com")

	_, _, err = execute("--config", cfg, "--email", "root@example.com", "--password", "secret1")
	assert.Error(t, err)
}

func TestCreateAdmin_InvalidInput(t *testing.T) {
	cfg := writeConfig(t)
	t.Setenv("ADMIN_PASSWORD", "")

	_, errOut, err := execute("--config", cfg, "--email", "root@example.com", "--password", "123")
	require.Error(t, err)
	assert.Contains(t, errOut, "password")
}

func TestCreateAdmin_EmailRequired(t *testing.T) {
	_, _, err := execute("--password", "secret1")
	assert.Error(t, err)
}
