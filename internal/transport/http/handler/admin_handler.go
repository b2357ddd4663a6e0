package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"alumni-connect/internal/domain"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/ez"
	mdw "alumni-connect/internal/transport/http/middleware"
)

type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

type listUsersQ struct {
	Role           string `form:"role" binding:"omitempty,oneof=student alumni admin"`
	Department     string `form:"department"`
	GraduationYear int    `form:"graduationYear"`
	Q              string `form:"q"` // 按姓名/院系/公司模糊搜
	ActiveOnly     bool   `form:"activeOnly"`
	Offset         int    `form:"offset,default=0" binding:"min=0"`
	Limit          int    `form:"limit,default=20"`
}

type listUsersOut struct {
	Total int64             `json:"total"`
	Items []domain.SafeUser `json:"items"`
}

type alumniStatsOut struct {
	TotalAlumni         int64               `json:"totalAlumni"`
	DepartmentStats     []domain.GroupCount `json:"departmentStats"`
	GraduationYearStats []domain.GroupCount `json:"graduationYearStats"`
}

// Mount 管理端分组已走 AuthJWT("admin")
func (h *AdminHandler) Mount(admin ez.EZ) {
	ez.RegisterAction(admin, ez.Action[listUsersQ, listUsersOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listUsersQ) (listUsersOut, error) {
			items, total, err := h.users.List(c.Request.Context(), domain.UserFilter{
				Role:           domain.Role(in.Role),
				Department:     in.Department,
				GraduationYear: in.GraduationYear,
				Q:              in.Q,
				ActiveOnly:     in.ActiveOnly,
				Offset:         in.Offset,
				Limit:          in.Limit,
			})
			if err != nil {
				return listUsersOut{}, err
			}
			return listUsersOut{Total: total, Items: items}, nil
		},
	})

	setActive := func(active bool) func(c *gin.Context, _ *struct{}) (domain.SafeUser, error) {
		return func(c *gin.Context, _ *struct{}) (domain.SafeUser, error) {
			id := c.Param("id")
			if !active && id == c.GetString(mdw.KeyUserID) {
				return domain.SafeUser{}, ez.BadRequest("cannot deactivate your own account")
			}
			return h.users.SetActive(c.Request.Context(), id, active)
		}
	}
	ez.RegisterAction(admin, ez.Action[struct{}, domain.SafeUser]{
		Method:  http.MethodPost,
		Path:    "/users/:id/deactivate",
		Binder:  ez.BindNone,
		Handler: setActive(false),
	})
	ez.RegisterAction(admin, ez.Action[struct{}, domain.SafeUser]{
		Method:  http.MethodPost,
		Path:    "/users/:id/activate",
		Binder:  ez.BindNone,
		Handler: setActive(true),
	})

	ez.RegisterAction(admin, ez.Action[struct{}, alumniStatsOut]{
		Method: http.MethodGet,
		Path:   "/alumni/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (alumniStatsOut, error) {
			st, err := h.users.Stats(c.Request.Context())
			if err != nil {
				return alumniStatsOut{}, err
			}
			return alumniStatsOut{
				TotalAlumni:         st.ByRole[domain.RoleAlumni],
				DepartmentStats:     st.Departments,
				GraduationYearStats: st.GraduationYears,
			}, nil
		},
	})
}
