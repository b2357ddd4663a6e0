package user

import (
	"time"

	"alumni-connect/internal/domain"
)

// RoleCounter 每个编号命名空间（student / alumni）一行，在注册事务内原子递增
type RoleCounter struct {
	Name      string `gorm:"primaryKey;size:32"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (RoleCounter) TableName() string { return "role_counters" }

// Models 用户相关表（AutoMigrate 用）
func Models() []any {
	return []any{&domain.User{}, &RoleCounter{}}
}
