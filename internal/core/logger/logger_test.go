package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"alumni-connect/internal/core/config"
)

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("hello rotate")
	l.Debug("filtered out")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "hello rotate")
	assert.NotContains(t, string(b), "filtered out")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("loud", false)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
