package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// zapGormLogger SQL 日志走 zap，和业务日志落同一个文件
type zapGormLogger struct {
	l     *zap.Logger
	level logger.LogLevel
	slow  time.Duration
}

func newGormLogger(l *zap.Logger, level string) logger.Interface {
	return &zapGormLogger{l: l.Named("gorm").WithOptions(zap.AddCallerSkip(3)), level: parseGormLevel(level), slow: defaultSlowThreshold}
}

func parseGormLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (g *zapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *zapGormLogger) Info(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.l.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *zapGormLogger) Warn(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.l.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *zapGormLogger) Error(_ context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.l.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 错误（未找到记录除外）记 error，慢查询记 warn，info 级别下全部记 debug
func (g *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.l.Error("sql error", zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.l.Warn("slow sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.l.Debug("sql", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
