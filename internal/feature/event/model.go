package event

import "time"

type Event struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	OrganizerID string     `gorm:"size:32;not null;index" json:"organizerId"`
	Title       string     `gorm:"size:200;not null" json:"title" binding:"max=200"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"size:200" json:"location" binding:"max=200"`
	StartsAt    time.Time  `gorm:"not null;index" json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	Capacity    int        `gorm:"not null;default:0" json:"capacity" binding:"min=0"` // 0 = 不限
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// RSVP 每人每活动一行，主键保证幂等
type RSVP struct {
	EventID   string    `gorm:"primaryKey;size:32" json:"eventId"`
	UserID    string    `gorm:"primaryKey;size:32;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RSVP) TableName() string { return "event_rsvps" }

func Models() []any { return []any{&Event{}, &RSVP{}} }
