package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumni-connect/internal/domain"
)

func TestDirectory_OnlyActiveAlumni(t *testing.T) {
	s, r := newService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		in := alumniIn(fmt.Sprintf("dir%d@example.com", i))
		if i == 2 {
			in.Department = "Physics"
		}
		u, err := s.Register(ctx, in)
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	student, err := s.Register(ctx, studentIn("stu@example.com"))
	require.NoError(t, err)
	_, err = s.SetActive(ctx, ids[1], false)
	require.NoError(t, err)

	d := NewDirectoryService(r, nil, time.Minute, nil)

	page, err := d.Alumni(ctx, DirectoryQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Size)
	for _, u := range page.List {
		assert.Equal(t, domain.RoleAlumni, u.Role)
		assert.True(t, u.IsActive)
	}

	page, err = d.Alumni(ctx, DirectoryQuery{Department: "physics"})
	require.NoError(t, err)
	require.Len(t, page.List, 1)
	assert.Equal(t, ids[2], page.List[0].ID)

	page, err = d.Alumni(ctx, DirectoryQuery{Size: 1, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.List, 1)

	mentors, err := d.Mentors(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mentors.Total)

	got, err := d.Alumnus(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)

	_, err = d.Alumnus(ctx, ids[1])
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = d.Alumnus(ctx, student.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = d.Alumnus(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectoryQuery_CacheKeyIgnoresCase(t *testing.T) {
	a := DirectoryQuery{Q: " Ada ", Department: "CS"}.normalized().cacheKey("alumni")
	b := DirectoryQuery{Q: "ada", Department: "cs", Page: 1, Size: 20}.normalized().cacheKey("alumni")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DirectoryQuery{Q: "ada"}.normalized().cacheKey("mentors"))
}
