package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProfileUpdate 局部更新：nil 表示不修改。
// role / email / studentId / alumniId 不可通过此路径修改，因此不在结构体中。
// Password 非 nil 即表示明确要改密码（显式 dirty 标记）。
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	GraduationYear *int
	Department     *string

	CurrentPosition *string
	Company         *string
	CurrentYear     *int
	RollNumber      *string

	Bio            *string
	LinkedIn       *string
	Phone          *string
	Location       *string
	ProfilePicture *string

	Password *string
}

func (p ProfileUpdate) PasswordChanged() bool { return p.Password != nil }

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// Normalize 去空白并按记录角色校验
func (p ProfileUpdate) Normalize(role Role, now time.Time) (ProfileUpdate, error) {
	ve := &ValidationError{}
	out := ProfileUpdate{
		FirstName:       trimPtr(p.FirstName),
		LastName:        trimPtr(p.LastName),
		GraduationYear:  p.GraduationYear,
		Department:      trimPtr(p.Department),
		CurrentPosition: trimPtr(p.CurrentPosition),
		Company:         trimPtr(p.Company),
		CurrentYear:     p.CurrentYear,
		RollNumber:      trimPtr(p.RollNumber),
		Bio:             trimPtr(p.Bio),
		LinkedIn:        trimPtr(p.LinkedIn),
		Phone:           trimPtr(p.Phone),
		Location:        trimPtr(p.Location),
		ProfilePicture:  trimPtr(p.ProfilePicture),
		Password:        p.Password,
	}

	nonEmpty := func(field string, v *string, msg string) {
		if v != nil && *v == "" {
			ve.Add(field, msg)
		}
	}
	nonEmpty("firstName", out.FirstName, "first name cannot be empty")
	nonEmpty("lastName", out.LastName, "last name cannot be empty")
	nonEmpty("department", out.Department, "department cannot be empty")
	if y := out.GraduationYear; y != nil {
		if maxYear := now.Year() + 10; *y < MinGraduationYear || *y > maxYear {
			ve.Add("graduationYear", fmt.Sprintf("graduation year must be between %d and %d", MinGraduationYear, maxYear))
		}
	}
	if out.Password != nil {
		checkPassword(ve, *out.Password)
	}

	notFor := func(field string, set bool) {
		if set {
			ve.Add(field, "not applicable to role "+string(role))
		}
	}
	switch role {
	case RoleStudent:
		if y := out.CurrentYear; y != nil && (*y < MinCurrentYear || *y > MaxCurrentYear) {
			ve.Add("currentYear", fmt.Sprintf("current year must be between %d and %d", MinCurrentYear, MaxCurrentYear))
		}
		nonEmpty("rollNumber", out.RollNumber, "roll number cannot be empty")
		notFor("currentPosition", out.CurrentPosition != nil)
		notFor("company", out.Company != nil)
	case RoleAlumni:
		nonEmpty("currentPosition", out.CurrentPosition, "current position cannot be empty")
		nonEmpty("company", out.Company, "company cannot be empty")
		notFor("currentYear", out.CurrentYear != nil)
		notFor("rollNumber", out.RollNumber != nil)
	default:
		notFor("currentPosition", out.CurrentPosition != nil)
		notFor("company", out.Company != nil)
		notFor("currentYear", out.CurrentYear != nil)
		notFor("rollNumber", out.RollNumber != nil)
	}

	if err := ve.OrNil(); err != nil {
		return ProfileUpdate{}, err
	}
	return out, nil
}

// Columns 需要写入的列（不含密码，密码由 service 哈希后单独写）
func (p ProfileUpdate) Columns() map[string]any {
	cols := map[string]any{}
	setS := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	setI := func(col string, v *int) {
		if v != nil {
			cols[col] = *v
		}
	}
	setS("first_name", p.FirstName)
	setS("last_name", p.LastName)
	setI("graduation_year", p.GraduationYear)
	setS("department", p.Department)
	setS("current_position", p.CurrentPosition)
	setS("company", p.Company)
	setI("current_year", p.CurrentYear)
	setS("roll_number", p.RollNumber)
	setS("bio", p.Bio)
	setS("linkedin", p.LinkedIn)
	setS("phone", p.Phone)
	setS("location", p.Location)
	setS("profile_picture", p.ProfilePicture)
	return cols
}
