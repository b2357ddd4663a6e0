package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// query 中需要打码的 key（小写比较）
var sensitiveQueryKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "access_token": {},
	"authorization": {}, "secret": {}, "email": {},
}

// 探活和抓取指标不记访问日志
var quietPaths = map[string]struct{}{"/health": {}, "/metrics": {}}

func maskQuery(q map[string][]string) map[string][]string {
	if len(q) == 0 {
		return nil
	}
	out := make(map[string][]string, len(q))
	for k, v := range q {
		if _, ok := sensitiveQueryKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// levelFor 按业务码定级：5xx error，认证/限流类 warn，其余 info
func levelFor(status, code int) zapcore.Level {
	switch {
	case status >= 500 || code >= 500:
		return zapcore.ErrorLevel
	case code == 401 || code == 403 || code == 429:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// AccessLog 每个请求一行摘要：rid、路由、HTTP 状态、业务码、耗时、uid
func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := quietPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		code := c.GetInt(KeyRespCode)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int("code", code),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Int("size", c.Writer.Size()),
		}
		if q := maskQuery(c.Request.URL.Query()); q != nil {
			fields = append(fields, zap.Any("query", q))
		}
		if uid := c.GetString(KeyUserID); uid != "" {
			fields = append(fields, zap.String("uid", uid))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if ce := l.Check(levelFor(status, code), "http request"); ce != nil {
			ce.Write(fields...)
		}
	}
}
