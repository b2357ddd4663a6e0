package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumni-connect/internal/domain"
)

func TestDeptCode(t *testing.T) {
	cases := map[string]string{
		"Computer Science":       "COM",
		"Electrical Engineering": "ELE",
		"it":                     "ITX",
		"A.I. & ML":              "AIM",
		"":                       "XXX",
		"3D Design":              "3DD",
	}
	for in, want := range cases {
		assert.Equal(t, want, DeptCode(in), in)
	}
}

func TestFormatIdentifier(t *testing.T) {
	assert.Equal(t, "ALU2020COM0005", FormatIdentifier(PrefixAlumni, 2020, "Computer Science", 5))
	assert.Equal(t, "STU2024ELE0001", FormatIdentifier(PrefixStudent, 2024, "Electrical Engineering", 1))
	assert.Equal(t, "STU2024ELE12345", FormatIdentifier(PrefixStudent, 2024, "Electrical Engineering", 12345))
}

func TestIdentifierAssigner(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)

	s := &domain.User{Role: domain.RoleStudent, Department: "Electrical Engineering", GraduationYear: 2028}
	assign := identifierAssigner(s, now)
	require.NotNil(t, assign)
	assign(1)
	require.NotNil(t, s.StudentID)
	assert.Equal(t, "STU2024ELE0001", *s.StudentID)
	assert.Nil(t, s.AlumniID)

	// 已有编号：不再分配
	assert.Nil(t, identifierAssigner(s, now))

	a := &domain.User{Role: domain.RoleAlumni, Department: "Computer Science", GraduationYear: 2020}
	identifierAssigner(a, now)(5)
	require.NotNil(t, a.AlumniID)
	assert.Equal(t, "ALU2020COM0005", *a.AlumniID)

	assert.Nil(t, identifierAssigner(&domain.User{Role: domain.RoleAdmin}, now))
}
