package mentorship

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Request 学生/校友向校友发起的辅导请求；MenteeID 为发起人
type Request struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	MenteeID  string    `gorm:"size:32;not null;index" json:"menteeId"`
	MentorID  string    `gorm:"size:32;not null;index" json:"mentorId"`
	Topic     string    `gorm:"size:200;not null" json:"topic" binding:"max=200"`
	Message   string    `gorm:"type:text" json:"message" binding:"max=4000"`
	Status    Status    `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return "mentorship_requests" }

func Models() []any { return []any{&Request{}} }
