package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

// ErrEmptyPassword 空密码不允许哈希
var ErrEmptyPassword = errors.New("empty password")

// Hasher bcrypt 封装，Cost 可配置（<=0 时使用 DefaultCost）
type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// HashPassword 失败时返回错误，调用方必须中止写入
func (h *Hasher) HashPassword(pw string) (string, error) {
	if pw == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *Hasher) CheckPassword(pw, hashed string) bool {
	return CheckPassword(pw, hashed)
}

func HashPassword(pw string) (string, error) {
	return NewHasher(DefaultCost).HashPassword(pw)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
