package router

import (
	"github.com/gin-gonic/gin"

	"alumni-connect/internal/transport/http/ez"
	"alumni-connect/internal/transport/http/handler"
	mdw "alumni-connect/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := newEngine(d, "admin")

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, "admin"))
	e := ez.New(admin, d.Log)

	handler.NewAdminHandler(d.Users).Mount(e)
	d.Modules.MountAdmin(e)

	return r
}
