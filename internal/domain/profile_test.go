package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProfileUpdate_NormalizeAndColumns(t *testing.T) {
	p := ProfileUpdate{
		FirstName: ptr("  Ada "),
		Company:   ptr(" Babbage & Co "),
		LinkedIn:  ptr("https://linkedin.com/in/ada"),
	}
	out, err := p.Normalize(RoleAlumni, testNow)
	require.NoError(t, err)

	cols := out.Columns()
	assert.Equal(t, map[string]any{
		"first_name": "Ada",
		"company":    "Babbage & Co",
		"linkedin":   "https://linkedin.com/in/ada",
	}, cols)
	assert.False(t, out.PasswordChanged())
}

func TestProfileUpdate_PasswordIsNeverAColumn(t *testing.T) {
	out, err := ProfileUpdate{Password: ptr("new-secret")}.Normalize(RoleStudent, testNow)
	require.NoError(t, err)
	assert.True(t, out.PasswordChanged())
	assert.Empty(t, out.Columns())
}

func TestProfileUpdate_RoleSpecificRules(t *testing.T) {
	_, err := ProfileUpdate{Company: ptr("X"), CurrentYear: ptr(9)}.Normalize(RoleStudent, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("company"))
	assert.True(t, ve.Has("currentYear"))

	_, err = ProfileUpdate{Company: ptr("  "), RollNumber: ptr("R1")}.Normalize(RoleAlumni, testNow)
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("company"))
	assert.True(t, ve.Has("rollNumber"))

	_, err = ProfileUpdate{RollNumber: ptr("R1")}.Normalize(RoleAdmin, testNow)
	ve, ok = AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("rollNumber"))
}

func TestProfileUpdate_BaseFieldRules(t *testing.T) {
	_, err := ProfileUpdate{
		FirstName:      ptr(""),
		Department:     ptr(" "),
		GraduationYear: ptr(1899),
		Password:       ptr("123"),
	}.Normalize(RoleAlumni, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 4)
}
