package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"alumni-connect/internal/transport/http/ez"
	"alumni-connect/internal/transport/http/handler"
	mdw "alumni-connect/internal/transport/http/middleware"
)

func NewAPIEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := newEngine(d, "api")

	// 前缀
	api := r.Group("/api/v1")

	// 公共分组：注册/登录，按 IP 限速防爆破
	perMin := d.Limits.AuthPerMin
	public := api.Group("", mdw.RateLimitPerIP(rate.Every(time.Minute/time.Duration(perMin)), perMin, 10*time.Minute))

	// 鉴权分组（能拿到 userId）
	authUser := api.Group("", mdw.AuthJWT(d.JWT))
	authed := ez.New(authUser, d.Log)

	handler.NewAuthHandler(d.Users, d.JWT).Mount(ez.New(public, d.Log), authed)
	handler.NewDirectoryHandler(d.Directory).Mount(authed)

	// 功能模块（events / mentorship / dashboard）
	d.Modules.MountAPI(authed)

	return r
}
