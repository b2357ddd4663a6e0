package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "alumni-connect/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求数上限（bcrypt 和 DB 连接池都有限）。
// 拿不到名额时最多排队 wait，超时返回 503；wait<=0 表示不排队。
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !acquire(c.Request.Context(), sem, wait) {
			abort(c, resp.CodeUnavailable, "server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

func acquire(ctx context.Context, sem *semaphore.Weighted, wait time.Duration) bool {
	if sem.TryAcquire(1) {
		return true
	}
	if wait <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return sem.Acquire(ctx, 1) == nil
}
