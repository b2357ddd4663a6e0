package dashboard

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alumni-connect/internal/domain"
	"alumni-connect/internal/feature/event"
	"alumni-connect/internal/feature/mentorship"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/ez"
	mdw "alumni-connect/internal/transport/http/middleware"
)

type Module struct {
	db     *gorm.DB
	users  *service.UserService
	events *event.Store
	now    func() time.Time
}

func NewModule(db *gorm.DB, users *service.UserService) *Module {
	return &Module{db: db, users: users, events: event.NewStore(db), now: time.Now}
}

func (m *Module) Priority() int { return 90 }

type userStats struct {
	TotalAlumni        int64 `json:"totalAlumni"`
	UpcomingEvents     int64 `json:"upcomingEvents"`
	MentorshipRequests int64 `json:"mentorshipRequests"`
}

type adminStats struct {
	Users              *domain.UserStats           `json:"users"`
	TotalEvents        int64                       `json:"totalEvents"`
	UpcomingEvents     int64                       `json:"upcomingEvents"`
	MentorshipRequests map[mentorship.Status]int64 `json:"mentorshipRequests"`
}

func (m *Module) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, userStats]{
		Method: http.MethodGet,
		Path:   "/dashboard/stats",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (userStats, error) {
			ctx := c.Request.Context()
			var out userStats
			err := m.db.WithContext(ctx).Model(&domain.User{}).
				Where("role = ? AND is_active = ?", domain.RoleAlumni, true).Count(&out.TotalAlumni).Error
			if err != nil {
				return userStats{}, ez.Internal("count alumni failed", err)
			}
			if out.UpcomingEvents, err = m.events.CountUpcoming(ctx, m.now().UTC()); err != nil {
				return userStats{}, ez.Internal("count events failed", err)
			}
			if out.MentorshipRequests, err = mentorship.CountByMentee(ctx, m.db, c.GetString(mdw.KeyUserID)); err != nil {
				return userStats{}, ez.Internal("count requests failed", err)
			}
			return out, nil
		},
	})
}

func (m *Module) MountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, adminStats]{
		Method: http.MethodGet,
		Path:   "/dashboard/stats",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (adminStats, error) {
			ctx := c.Request.Context()
			st, err := m.users.Stats(ctx)
			if err != nil {
				return adminStats{}, err
			}
			out := adminStats{Users: st}
			if out.TotalEvents, err = m.events.Count(ctx); err != nil {
				return adminStats{}, ez.Internal("count events failed", err)
			}
			if out.UpcomingEvents, err = m.events.CountUpcoming(ctx, m.now().UTC()); err != nil {
				return adminStats{}, ez.Internal("count events failed", err)
			}
			if out.MentorshipRequests, err = mentorship.CountByStatus(ctx, m.db); err != nil {
				return adminStats{}, ez.Internal("count requests failed", err)
			}
			return out, nil
		},
	})
}
