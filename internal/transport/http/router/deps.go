package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alumni-connect/internal/core/auth"
	"alumni-connect/internal/core/config"
	"alumni-connect/internal/core/server"
	"alumni-connect/internal/service"
	mdw "alumni-connect/internal/transport/http/middleware"
)

// Deps 两个 engine 共用的依赖
type Deps struct {
	Log       *zap.Logger
	JWT       *auth.JWTer
	Users     *service.UserService
	Directory *service.DirectoryService
	Modules   *Registry
	Limits    config.Limits
	CORS      []string
	Mode      string
}

// newEngine 公共中间件 + /health + /metrics
func newEngine(d Deps, name string) *gin.Engine {
	r := server.NewRouter(d.Log, server.Options{Name: name, Mode: d.Mode, AllowOrigins: d.CORS})

	lim := d.Limits
	// 日志和指标在最外层，限流/超时等中断的请求也能记到
	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(d.Log),
		mdw.Metrics(name),
		mdw.Recovery(d.Log),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency, 2*time.Second),
		mdw.MaxBodyBytes(lim.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Limits.RPS <= 0 {
		d.Limits.RPS = 20
	}
	if d.Limits.Burst <= 0 {
		d.Limits.Burst = 40
	}
	if d.Limits.Concurrency <= 0 {
		d.Limits.Concurrency = 300
	}
	if d.Limits.MaxBodyMB <= 0 {
		d.Limits.MaxBodyMB = 4
	}
	if d.Limits.TimeoutSec <= 0 {
		d.Limits.TimeoutSec = 10
	}
	if d.Limits.AuthPerMin <= 0 {
		d.Limits.AuthPerMin = 20
	}
	return d
}
