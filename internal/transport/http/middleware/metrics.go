package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpReqTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "alumni", Name: "http_requests_total", Help: "Count of HTTP requests by response envelope code"},
		[]string{"engine", "path", "method", "code"},
	)
	httpLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "alumni",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"engine", "path", "method"},
	)
)

// Metrics engine 区分用户端 api 与管理端 admin；code 取统一响应里的业务码
func Metrics(engine string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(engine, path, c.Request.Method, strconv.Itoa(c.GetInt(KeyRespCode))).Inc()
		httpLatency.WithLabelValues(engine, path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
