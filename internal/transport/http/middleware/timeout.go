package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "alumni-connect/internal/transport/http/response"
)

// Timeout 给请求 ctx 加截止时间；下游（gorm/redis/bcrypt 前的查询）都透传这个 ctx。
// handler 超时还没写响应时补 504，已写过的不动。
func Timeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if c.Writer.Written() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
