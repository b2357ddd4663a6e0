package mentorship

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alumni-connect/internal/domain"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/ez"
	mdw "alumni-connect/internal/transport/http/middleware"
)

// Module /mentorship：发起人自己的请求 CRUD、导师列表、导师处理收到的请求
type Module struct {
	db    *gorm.DB
	users domain.UserRepository
	dir   *service.DirectoryService
}

func NewModule(db *gorm.DB, users domain.UserRepository, dir *service.DirectoryService) *Module {
	return &Module{db: db, users: users, dir: dir}
}

func (m *Module) Priority() int { return 30 }

// CountByMentee 仪表盘用
func CountByMentee(ctx context.Context, db *gorm.DB, menteeID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Request{}).Where("mentee_id = ?", menteeID).Count(&n).Error
	return n, err
}

// CountByStatus 管理端仪表盘用
func CountByStatus(ctx context.Context, db *gorm.DB) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Total  int64
	}
	if err := db.WithContext(ctx).Model(&Request{}).Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := map[Status]int64{}
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

func (m *Module) checkMentor(ctx context.Context, menteeID, mentorID string) error {
	ve := &domain.ValidationError{}
	if mentorID == "" {
		ve.Add("mentorId", "mentor is required")
		return ve
	}
	if mentorID == menteeID {
		ve.Add("mentorId", "cannot request mentorship from yourself")
		return ve
	}
	u, err := m.users.FindByID(ctx, mentorID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && (u.Role != domain.RoleAlumni || !u.IsActive)) {
		ve.Add("mentorId", "mentor must be an active alumni")
		return ve
	}
	if err != nil {
		return ez.Internal("lookup mentor failed", err)
	}
	return nil
}

type respondReq struct {
	Accept bool `json:"accept"`
}

type mentorsQ struct {
	Department string `form:"department"`
	Page       int    `form:"page"`
	Size       int    `form:"size"`
}

func (m *Module) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[mentorsQ, *service.DirectoryPage]{
		Method: http.MethodGet,
		Path:   "/mentorship/mentors",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *mentorsQ) (*service.DirectoryPage, error) {
			return m.dir.Mentors(c.Request.Context(), in.Department, in.Page, in.Size)
		},
	})

	// 导师视角：收到的请求
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/mentorship/incoming",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			page, size, offset := ez.Paging(c)
			q := m.db.WithContext(c).Model(&Request{}).Where("mentor_id = ?", c.GetString(mdw.KeyUserID))
			var total int64
			if err := q.Count(&total).Error; err != nil {
				return nil, ez.Internal("count requests failed", err)
			}
			var items []Request
			if err := q.Order("created_at DESC").Offset(offset).Limit(size).Find(&items).Error; err != nil {
				return nil, ez.Internal("list requests failed", err)
			}
			return gin.H{"list": items, "total": total, "page": page, "size": size}, nil
		},
	})

	ez.Crud(ez.CrudConfig[Request]{
		DB:         m.db,
		EZ:         e,
		Path:       "/mentorship",
		New:        func() *Request { return &Request{} },
		OwnerField: "MenteeID",
		OrderBy:    "created_at DESC",
		Hooks: ez.CrudHooks[Request]{
			BeforeCreate: func(c *gin.Context, r *Request) error {
				r.Topic = strings.TrimSpace(r.Topic)
				r.MentorID = strings.TrimSpace(r.MentorID)
				if r.Topic == "" {
					ve := &domain.ValidationError{}
					ve.Add("topic", "topic is required")
					return ve
				}
				r.Status = StatusPending
				return m.checkMentor(c.Request.Context(), r.MenteeID, r.MentorID)
			},
			// 发起人只能改 topic/message；零值字段不会写库
			BeforeUpdate: func(_ *gin.Context, r *Request) error {
				r.Topic = strings.TrimSpace(r.Topic)
				r.MentorID = ""
				r.Status = ""
				return nil
			},
		},
	})

	ez.RegisterAction(e, ez.Action[respondReq, Request]{
		Method: http.MethodPost,
		Path:   "/mentorship/:id/respond",
		Binder: ez.BindJSON,
		Auth:   true,
		Roles:  []string{string(domain.RoleAlumni)},
		Handler: func(c *gin.Context, in *respondReq) (Request, error) {
			status := StatusDeclined
			if in.Accept {
				status = StatusAccepted
			}
			id := c.Param("id")
			res := m.db.WithContext(c).Model(&Request{}).
				Where("id = ? AND mentor_id = ? AND status = ?", id, c.GetString(mdw.KeyUserID), StatusPending).
				Update("status", status)
			if res.Error != nil {
				return Request{}, ez.Internal("update request failed", res.Error)
			}
			if res.RowsAffected == 0 {
				return Request{}, ez.NotFound("no pending request")
			}
			var r Request
			if err := m.db.WithContext(c).Where("id = ?", id).First(&r).Error; err != nil {
				return Request{}, ez.Internal("reload request failed", err)
			}
			return r, nil
		},
	})
}
