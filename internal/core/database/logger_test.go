package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := newGormLogger(zap.New(core), "warn")
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	gl.Trace(ctx, time.Now(), sql, errors.New("boom"))
	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, "sql error", entries[0].Message)
	assert.Equal(t, "slow sql", entries[1].Message)

	gl.LogMode(logger.Info).Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("sql").Len())

	newGormLogger(zap.New(core), "silent").Trace(ctx, time.Now(), sql, errors.New("boom"))
	assert.Equal(t, 1, logs.Len())
}
