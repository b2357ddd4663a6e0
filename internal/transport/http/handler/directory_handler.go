package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alumni-connect/internal/domain"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/ez"
)

type DirectoryHandler struct {
	dir *service.DirectoryService
}

func NewDirectoryHandler(dir *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

type alumniQ struct {
	Q              string `form:"q"`
	Department     string `form:"department"`
	GraduationYear int    `form:"graduationYear"`
	Page           int    `form:"page"`
	Size           int    `form:"size"`
}

// Mount 需登录
func (h *DirectoryHandler) Mount(authed ez.EZ) {
	ez.RegisterAction(authed, ez.Action[alumniQ, *service.DirectoryPage]{
		Method: http.MethodGet,
		Path:   "/alumni",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *alumniQ) (*service.DirectoryPage, error) {
			return h.dir.Alumni(c.Request.Context(), service.DirectoryQuery{
				Q:              in.Q,
				Department:     in.Department,
				GraduationYear: in.GraduationYear,
				Page:           in.Page,
				Size:           in.Size,
			})
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, domain.SafeUser]{
		Method: http.MethodGet,
		Path:   "/alumni/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (domain.SafeUser, error) {
			return h.dir.Alumnus(c.Request.Context(), c.Param("id"))
		},
	})
}
