package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alumni-connect/internal/domain"
)

var (
	ErrEventStarted = errors.New("event already started")
	ErrEventFull    = errors.New("event is full")
)

// Upcoming 附带报名人数的活动
type Upcoming struct {
	Event
	RSVPCount int64 `gorm:"column:rsvp_count" json:"rsvpCount"`
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Upcoming(ctx context.Context, now time.Time, offset, limit int) ([]Upcoming, int64, error) {
	q := s.db.WithContext(ctx).Model(&Event{}).Where("starts_at > ?", now)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []Upcoming
	err := q.Select("events.*, (SELECT COUNT(*) FROM event_rsvps r WHERE r.event_id = events.id) AS rsvp_count").
		Order("starts_at ASC").Order("id").Offset(offset).Limit(limit).Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) CountUpcoming(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Event{}).Where("starts_at > ?", now).Count(&n).Error
	return n, err
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Event{}).Count(&n).Error
	return n, err
}

// Attend 报名（重复报名不报错）；返回当前报名人数
func (s *Store) Attend(ctx context.Context, eventID, userID string, now time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁住活动行，同一活动的报名串行执行，容量检查和插入之间不会被插队
		var ev Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", eventID).First(&ev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !ev.StartsAt.After(now) {
			return ErrEventStarted
		}
		if err := tx.Model(&RSVP{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		var mine int64
		if err := tx.Model(&RSVP{}).Where("event_id = ? AND user_id = ?", eventID, userID).Count(&mine).Error; err != nil {
			return err
		}
		if mine > 0 {
			return nil
		}
		if ev.Capacity > 0 && count >= int64(ev.Capacity) {
			return ErrEventFull
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&RSVP{EventID: eventID, UserID: userID, CreatedAt: now})
		if res.Error != nil {
			return res.Error
		}
		count += res.RowsAffected
		return nil
	})
	return count, err
}

func (s *Store) Cancel(ctx context.Context, eventID, userID string) error {
	return s.db.WithContext(ctx).Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&RSVP{}).Error
}
