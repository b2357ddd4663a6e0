package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func alumniInput() RegisterInput {
	return RegisterInput{
		FirstName:       " Ada ",
		LastName:        "Lovelace",
		Email:           "  Ada@Example.COM ",
		Password:        "secret1",
		Role:            RoleAlumni,
		GraduationYear:  2020,
		Department:      "Computer Science",
		CurrentPosition: " Engineer ",
		Company:         "Analytical Engines",
	}
}

func studentInput() RegisterInput {
	return RegisterInput{
		FirstName:      "Grace",
		LastName:       "Hopper",
		Email:          "grace@example.com",
		Password:       "secret1",
		Role:           RoleStudent,
		GraduationYear: 2026,
		Department:     "Electrical Engineering",
		CurrentYear:    2,
		RollNumber:     " EE-42 ",
	}
}

func TestValidateRegistration_Alumni(t *testing.T) {
	reg, err := ValidateRegistration(alumniInput(), testNow)
	require.NoError(t, err)

	assert.Equal(t, "Ada", reg.FirstName)
	assert.Equal(t, "ada@example.com", reg.Email)
	p, ok := reg.Profile.(AlumniProfile)
	require.True(t, ok)
	assert.Equal(t, "Engineer", p.CurrentPosition)
	assert.Equal(t, "Analytical Engines", p.Company)
}

func TestValidateRegistration_Student(t *testing.T) {
	reg, err := ValidateRegistration(studentInput(), testNow)
	require.NoError(t, err)

	p, ok := reg.Profile.(StudentProfile)
	require.True(t, ok)
	assert.Equal(t, 2, p.CurrentYear)
	assert.Equal(t, "EE-42", p.RollNumber)
}

func TestValidateRegistration_DefaultRoleIsStudent(t *testing.T) {
	in := studentInput()
	in.Role = ""
	reg, err := ValidateRegistration(in, testNow)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, reg.Role)
}

func TestValidateRegistration_AlumniMissingCompany(t *testing.T) {
	in := alumniInput()
	in.Company = "   "

	_, err := ValidateRegistration(in, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("company"))
	assert.Len(t, ve.Fields, 1)
}

func TestValidateRegistration_EnumeratesEveryViolation(t *testing.T) {
	in := studentInput()
	in.FirstName = ""
	in.Password = "123"
	in.CurrentYear = 7
	in.RollNumber = ""
	in.GraduationYear = 1800

	_, err := ValidateRegistration(in, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	for _, f := range []string{"firstName", "password", "currentYear", "rollNumber", "graduationYear"} {
		assert.True(t, ve.Has(f), "expected violation for %s", f)
	}
	assert.Len(t, ve.Fields, 5)
}

func TestValidateRegistration_StudentYearBounds(t *testing.T) {
	for _, y := range []int{0, 7, -1} {
		in := studentInput()
		in.CurrentYear = y
		_, err := ValidateRegistration(in, testNow)
		ve, ok := AsValidation(err)
		require.True(t, ok, "year %d", y)
		assert.True(t, ve.Has("currentYear"))
	}
	for _, y := range []int{1, 6} {
		in := studentInput()
		in.CurrentYear = y
		_, err := ValidateRegistration(in, testNow)
		assert.NoError(t, err, "year %d", y)
	}
}

func TestValidateRegistration_AdminNeedsNoExtras(t *testing.T) {
	in := RegisterInput{
		FirstName: "Root", LastName: "Admin", Email: "root@example.com", Password: "secret1",
		Role: RoleAdmin, GraduationYear: 2000, Department: "Administration",
	}
	reg, err := ValidateRegistration(in, testNow)
	require.NoError(t, err)
	assert.Nil(t, reg.Profile)
}

func TestValidateRegistration_UnknownRole(t *testing.T) {
	in := studentInput()
	in.Role = "professor"
	_, err := ValidateRegistration(in, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("role"))
}

func TestRegistration_NewUser(t *testing.T) {
	reg, err := ValidateRegistration(alumniInput(), testNow)
	require.NoError(t, err)

	u := reg.NewUser("id1", "hash", testNow)
	assert.Equal(t, RoleAlumni, u.Role)
	assert.Equal(t, "Engineer", u.CurrentPosition)
	assert.Empty(t, u.RollNumber)
	assert.Zero(t, u.CurrentYear)
	assert.Nil(t, u.StudentID)
	assert.Nil(t, u.AlumniID)
	assert.True(t, u.IsActive)
	assert.Equal(t, testNow, u.CreatedAt)
	assert.Equal(t, testNow, u.UpdatedAt)
}

func TestValidationError_OrNil(t *testing.T) {
	var ve *ValidationError
	assert.NoError(t, ve.OrNil())
	assert.NoError(t, (&ValidationError{}).OrNil())
	ve = &ValidationError{}
	ve.Add("a", "b")
	assert.EqualError(t, ve.OrNil(), "validation failed: a: b")
}

func TestValidateRegistration_PasswordTooLongForBcrypt(t *testing.T) {
	in := alumniInput()
	in.Password = strings.Repeat("p", MaxPasswordBytes+1)

	_, err := ValidateRegistration(in, testNow)
	ve, ok := AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("password"))

	in.Password = strings.Repeat("p", MaxPasswordBytes)
	_, err = ValidateRegistration(in, testNow)
	assert.NoError(t, err)
}
