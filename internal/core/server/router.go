package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Options struct {
	Name         string
	Mode         string // gin.DebugMode / gin.ReleaseMode / gin.TestMode
	AllowOrigins []string
}

// NewRouter 裸引擎 + CORS；其余中间件由各端 engine 自己挂
func NewRouter(l *zap.Logger, o Options) *gin.Engine {
	if o.Mode != "" {
		gin.SetMode(o.Mode)
	}
	r := gin.New()
	cc := cors.DefaultConfig()
	if len(o.AllowOrigins) > 0 {
		cc.AllowOrigins = o.AllowOrigins
		cc.AllowCredentials = true
	} else {
		cc.AllowAllOrigins = true
	}
	cc.AddAllowHeaders("Authorization", "X-Request-ID")
	cc.AddExposeHeaders("X-Request-ID")
	r.Use(cors.New(cc))
	l.Debug("router created", zap.String("name", o.Name), zap.String("mode", gin.Mode()))
	return r
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// BaseURL 便于日志里直接点开
func BaseURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Run 异步启动，收到 SIGINT/SIGTERM 后优雅关闭
func Run(srv *http.Server, l *zap.Logger, name string, shutdownTimeout time.Duration) {
	go func() {
		l.Info(name+" starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(name+" start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Warn(name+" shutdown", zap.Error(err))
	}
	l.Info(name + " stopped gracefully")
}
