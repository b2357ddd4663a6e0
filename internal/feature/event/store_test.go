package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumni-connect/internal/core/database/dbtest"
	"alumni-connect/internal/domain"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, id string, startsIn time.Duration, capacity int) {
	t.Helper()
	ev := &Event{ID: id, OrganizerID: "org", Title: id, StartsAt: now.Add(startsIn), Capacity: capacity}
	require.NoError(t, s.db.Create(ev).Error)
}

func TestStore_AttendIsIdempotentAndCapped(t *testing.T) {
	s := NewStore(dbtest.Open(t, Models()...))
	ctx := context.Background()
	seed(t, s, "meetup", 24*time.Hour, 2)

	n, err := s.Attend(ctx, "meetup", "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Attend(ctx, "meetup", "u1", now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.Attend(ctx, "meetup", "u2", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = s.Attend(ctx, "meetup", "u3", now)
	assert.ErrorIs(t, err, ErrEventFull)

	// 已报名的人在满员后重复报名仍然成功
	n, err = s.Attend(ctx, "meetup", "u2", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, s.Cancel(ctx, "meetup", "u1"))
	n, err = s.Attend(ctx, "meetup", "u3", now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestStore_AttendRejectsStartedOrMissing(t *testing.T) {
	s := NewStore(dbtest.Open(t, Models()...))
	ctx := context.Background()
	seed(t, s, "past", -time.Hour, 0)

	_, err := s.Attend(ctx, "past", "u1", now)
	assert.ErrorIs(t, err, ErrEventStarted)

	_, err = s.Attend(ctx, "nope", "u1", now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Upcoming(t *testing.T) {
	s := NewStore(dbtest.Open(t, Models()...))
	ctx := context.Background()
	seed(t, s, "later", 48*time.Hour, 0)
	seed(t, s, "soon", time.Hour, 0)
	seed(t, s, "done", -time.Hour, 0)
	_, err := s.Attend(ctx, "soon", "u1", now)
	require.NoError(t, err)

	items, total, err := s.Upcoming(ctx, now, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "soon", items[0].ID)
	assert.EqualValues(t, 1, items[0].RSVPCount)
	assert.Equal(t, "later", items[1].ID)
	assert.EqualValues(t, 0, items[1].RSVPCount)

	items, _, err = s.Upcoming(ctx, now, 1, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "later", items[0].ID)

	up, err := s.CountUpcoming(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, up)
	all, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all)
}

func TestStore_ConcurrentAttendRespectsCapacity(t *testing.T) {
	s := NewStore(dbtest.Open(t, Models()...))
	ctx := context.Background()
	seed(t, s, "popular", 24*time.Hour, 3)

	const n = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Attend(ctx, "popular", fmt.Sprintf("u%d", i), now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrEventFull):
				full++
			default:
				t.Errorf("attend u%d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	assert.Equal(t, n-3, full)
	var rsvps int64
	require.NoError(t, s.db.Model(&RSVP{}).Where("event_id = ?", "popular").Count(&rsvps).Error)
	assert.EqualValues(t, 3, rsvps)
}
