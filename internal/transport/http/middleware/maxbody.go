package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "alumni-connect/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小（limits.maxBodyMB）。
// handler 读超限后没写响应时，这里补一个 400。
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(e.Err, &mbe) {
				abort(c, resp.CodeBadRequest, "request body too large")
				return
			}
		}
	}
}
