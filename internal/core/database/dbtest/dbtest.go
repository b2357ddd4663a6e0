// Package dbtest 测试用临时 sqlite 数据库
package dbtest

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"alumni-connect/internal/core/database"
)

func Open(t testing.TB, models ...any) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=journal_mode(WAL)"
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: dsn, MaxOpenConns: 4, LogLevel: "silent"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
