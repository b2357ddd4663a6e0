package middleware

import (
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "alumni-connect/internal/transport/http/response"
)

// Recovery panic 记 zap（带堆栈），对外仍是统一响应
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return ginzap.CustomRecoveryWithZap(l, true, func(c *gin.Context, _ any) {
		abort(c, resp.CodeServerError, "internal error")
	})
}
