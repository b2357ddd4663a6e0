package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "alumni-connect/internal/transport/http/response"
)

// KeyRespCode 本次响应的业务码；HTTP 状态固定 200，访问日志靠它区分成败
const KeyRespCode = "respCode"

// SetRespCode 由写错误响应的一方调用；未设置视为 CodeOK
func SetRespCode(c *gin.Context, code int) { c.Set(KeyRespCode, code) }

func abort(c *gin.Context, code int, msg string) {
	SetRespCode(c, code)
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
