package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPasswordLen    = 6
	MaxPasswordBytes  = 72 // bcrypt 上限
	MinGraduationYear = 1900
	MinCurrentYear    = 1
	MaxCurrentYear    = 6
)

// RegisterInput 原始注册字段（已由 HTTP 层做过格式校验）
type RegisterInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	Role           Role
	GraduationYear int
	Department     string

	CurrentPosition string
	Company         string
	CurrentYear     int
	RollNumber      string

	Details Details
}

// Details 可选资料，不参与核心约束
type Details struct {
	Bio            string
	LinkedIn       string
	Phone          string
	Location       string
	ProfilePicture string
}

func (d Details) trimmed() Details {
	return Details{
		Bio:            strings.TrimSpace(d.Bio),
		LinkedIn:       strings.TrimSpace(d.LinkedIn),
		Phone:          strings.TrimSpace(d.Phone),
		Location:       strings.TrimSpace(d.Location),
		ProfilePicture: strings.TrimSpace(d.ProfilePicture),
	}
}

// RoleProfile 按角色区分的变体：StudentProfile / AlumniProfile；admin 为 nil
type RoleProfile interface {
	Role() Role
}

type StudentProfile struct {
	CurrentYear int
	RollNumber  string
}

func (StudentProfile) Role() Role { return RoleStudent }

type AlumniProfile struct {
	CurrentPosition string
	Company         string
}

func (AlumniProfile) Role() Role { return RoleAlumni }

// Registration 校验并规范化后的注册数据
type Registration struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	Role           Role
	GraduationYear int
	Department     string
	Profile        RoleProfile
	Details        Details
}

// ValidateRegistration 纯函数：先校验公共字段，再按角色做一次判别匹配。
// 所有错误一次性返回。
func ValidateRegistration(in RegisterInput, now time.Time) (Registration, error) {
	ve := &ValidationError{}
	reg := Registration{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          NormalizeEmail(in.Email),
		Password:       in.Password,
		Role:           Role(strings.ToLower(strings.TrimSpace(string(in.Role)))),
		GraduationYear: in.GraduationYear,
		Department:     strings.TrimSpace(in.Department),
		Details:        in.Details.trimmed(),
	}
	if reg.Role == "" {
		reg.Role = RoleStudent
	}

	if reg.FirstName == "" {
		ve.Add("firstName", "first name is required")
	}
	if reg.LastName == "" {
		ve.Add("lastName", "last name is required")
	}
	if reg.Email == "" || !strings.Contains(reg.Email, "@") {
		ve.Add("email", "valid email is required")
	}
	checkPassword(ve, reg.Password)
	if maxYear := now.Year() + 10; reg.GraduationYear < MinGraduationYear || reg.GraduationYear > maxYear {
		ve.Add("graduationYear", fmt.Sprintf("graduation year must be between %d and %d", MinGraduationYear, maxYear))
	}
	if reg.Department == "" {
		ve.Add("department", "department is required")
	}

	switch reg.Role {
	case RoleStudent:
		sp := StudentProfile{CurrentYear: in.CurrentYear, RollNumber: strings.TrimSpace(in.RollNumber)}
		if sp.CurrentYear < MinCurrentYear || sp.CurrentYear > MaxCurrentYear {
			ve.Add("currentYear", fmt.Sprintf("current year must be between %d and %d", MinCurrentYear, MaxCurrentYear))
		}
		if sp.RollNumber == "" {
			ve.Add("rollNumber", "roll number is required for students")
		}
		reg.Profile = sp
	case RoleAlumni:
		ap := AlumniProfile{CurrentPosition: strings.TrimSpace(in.CurrentPosition), Company: strings.TrimSpace(in.Company)}
		if ap.CurrentPosition == "" {
			ve.Add("currentPosition", "current position is required for alumni")
		}
		if ap.Company == "" {
			ve.Add("company", "company is required for alumni")
		}
		reg.Profile = ap
	case RoleAdmin:
		reg.Profile = nil
	default:
		ve.Add("role", "role must be one of student, alumni, admin")
	}

	if err := ve.OrNil(); err != nil {
		return Registration{}, err
	}
	return reg, nil
}

func checkPassword(ve *ValidationError, pw string) {
	switch {
	case utf8.RuneCountInString(pw) < MinPasswordLen:
		ve.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLen))
	case len(pw) > MaxPasswordBytes:
		ve.Add("password", fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
}

// NewUser 生成待持久化记录；编号由仓储层在事务内分配
func (r Registration) NewUser(id, passwordHash string, now time.Time) *User {
	u := &User{
		ID:             id,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		PasswordHash:   passwordHash,
		Role:           r.Role,
		GraduationYear: r.GraduationYear,
		Department:     r.Department,
		Bio:            r.Details.Bio,
		LinkedIn:       r.Details.LinkedIn,
		Phone:          r.Details.Phone,
		Location:       r.Details.Location,
		ProfilePicture: r.Details.ProfilePicture,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch p := r.Profile.(type) {
	case StudentProfile:
		u.CurrentYear = p.CurrentYear
		u.RollNumber = p.RollNumber
	case AlumniProfile:
		u.CurrentPosition = p.CurrentPosition
		u.Company = p.Company
	}
	return u
}
