package event

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"alumni-connect/internal/domain"
	"alumni-connect/internal/transport/http/ez"
	mdw "alumni-connect/internal/transport/http/middleware"
)

// Module /events：组织者自己的 CRUD + 所有人可见的 upcoming + 报名
type Module struct {
	db    *gorm.DB
	store *Store
	now   func() time.Time
}

func NewModule(db *gorm.DB) *Module {
	return &Module{db: db, store: NewStore(db), now: time.Now}
}

func (m *Module) Priority() int { return 20 }

func (m *Module) Store() *Store { return m.store }

func validate(ev *Event) error {
	ve := &domain.ValidationError{}
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		ve.Add("title", "title is required")
	}
	if ev.StartsAt.IsZero() {
		ve.Add("startsAt", "start time is required")
	}
	ev.StartsAt = ev.StartsAt.UTC()
	if ev.EndsAt != nil {
		end := ev.EndsAt.UTC()
		ev.EndsAt = &end
		if !end.After(ev.StartsAt) {
			ve.Add("endsAt", "end time must be after start time")
		}
	}
	return ve.OrNil()
}

type rsvpOut struct {
	EventID   string `json:"eventId"`
	Attending bool   `json:"attending"`
	RSVPCount int64  `json:"rsvpCount"`
}

func (m *Module) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/events/upcoming",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			page, size, offset := ez.Paging(c)
			items, total, err := m.store.Upcoming(c.Request.Context(), m.now().UTC(), offset, size)
			if err != nil {
				return nil, ez.Internal("list upcoming events failed", err)
			}
			return gin.H{"list": items, "total": total, "page": page, "size": size}, nil
		},
	})

	ez.Crud(ez.CrudConfig[Event]{
		DB:         m.db,
		EZ:         e,
		Path:       "/events",
		New:        func() *Event { return &Event{} },
		OwnerField: "OrganizerID",
		OrderBy:    "starts_at DESC",
		Hooks: ez.CrudHooks[Event]{
			BeforeCreate: func(_ *gin.Context, ev *Event) error { return validate(ev) },
			BeforeUpdate: func(_ *gin.Context, ev *Event) error { return validate(ev) },
		},
	})

	rsvpErr := func(err error) error {
		switch {
		case errors.Is(err, ErrEventStarted):
			return ez.BadRequest(err.Error())
		case errors.Is(err, ErrEventFull):
			return ez.Conflict(err.Error())
		case errors.Is(err, domain.ErrNotFound):
			return ez.NotFound("event not found")
		}
		return ez.Internal("rsvp failed", err)
	}

	ez.RegisterAction(e, ez.Action[struct{}, rsvpOut]{
		Method: http.MethodPost,
		Path:   "/events/:id/rsvp",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (rsvpOut, error) {
			id := c.Param("id")
			n, err := m.store.Attend(c.Request.Context(), id, c.GetString(mdw.KeyUserID), m.now().UTC())
			if err != nil {
				return rsvpOut{}, rsvpErr(err)
			}
			return rsvpOut{EventID: id, Attending: true, RSVPCount: n}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, rsvpOut]{
		Method: http.MethodDelete,
		Path:   "/events/:id/rsvp",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (rsvpOut, error) {
			id := c.Param("id")
			if err := m.store.Cancel(c.Request.Context(), id, c.GetString(mdw.KeyUserID)); err != nil {
				return rsvpOut{}, rsvpErr(err)
			}
			return rsvpOut{EventID: id}, nil
		},
	})
}
