package domain

import (
	"context"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleAdmin:
		return true
	}
	return false
}

// User 持久化记录；PasswordHash 永不序列化
type User struct {
	ID           string `gorm:"primaryKey;size:32" json:"id"`
	FirstName    string `gorm:"size:64;not null" json:"firstName"`
	LastName     string `gorm:"size:64;not null" json:"lastName"`
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         Role   `gorm:"size:16;not null;index" json:"role"`

	// 稀疏唯一：NULL 不参与唯一约束
	StudentID *string `gorm:"column:student_id;uniqueIndex;size:32" json:"studentId,omitempty"`
	AlumniID  *string `gorm:"column:alumni_id;uniqueIndex;size:32" json:"alumniId,omitempty"`

	GraduationYear int    `gorm:"not null;index" json:"graduationYear"`
	Department     string `gorm:"size:128;not null;index" json:"department"`

	CurrentPosition string `gorm:"size:128" json:"currentPosition,omitempty"`
	Company         string `gorm:"size:128" json:"company,omitempty"`
	CurrentYear     int    `json:"currentYear,omitempty"`
	RollNumber      string `gorm:"size:64" json:"rollNumber,omitempty"`

	Bio            string `gorm:"type:text" json:"bio,omitempty"`
	LinkedIn       string `gorm:"column:linkedin;size:255" json:"linkedin,omitempty"`
	Phone          string `gorm:"size:32" json:"phone,omitempty"`
	Location       string `gorm:"size:128" json:"location,omitempty"`
	ProfilePicture string `gorm:"size:512" json:"profilePicture,omitempty"`

	IsActive  bool       `gorm:"not null;default:true" json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	// 时间戳由 service 维护（保证 updatedAt 单调递增），关闭 gorm 自动填充
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Identifier 返回与角色对应的人类可读编号（admin 为空）
func (u *User) Identifier() string {
	switch {
	case u.Role == RoleStudent && u.StudentID != nil:
		return *u.StudentID
	case u.Role == RoleAlumni && u.AlumniID != nil:
		return *u.AlumniID
	}
	return ""
}

// SafeUser 对外投影：不含密码哈希
type SafeUser struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Role            Role       `json:"role"`
	StudentID       *string    `json:"studentId,omitempty"`
	AlumniID        *string    `json:"alumniId,omitempty"`
	GraduationYear  int        `json:"graduationYear"`
	Department      string     `json:"department"`
	CurrentPosition string     `json:"currentPosition,omitempty"`
	Company         string     `json:"company,omitempty"`
	CurrentYear     int        `json:"currentYear,omitempty"`
	RollNumber      string     `json:"rollNumber,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	LinkedIn        string     `json:"linkedin,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Location        string     `json:"location,omitempty"`
	ProfilePicture  string     `json:"profilePicture,omitempty"`
	IsActive        bool       `json:"isActive"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		StudentID:       u.StudentID,
		AlumniID:        u.AlumniID,
		GraduationYear:  u.GraduationYear,
		Department:      u.Department,
		CurrentPosition: u.CurrentPosition,
		Company:         u.Company,
		CurrentYear:     u.CurrentYear,
		RollNumber:      u.RollNumber,
		Bio:             u.Bio,
		LinkedIn:        u.LinkedIn,
		Phone:           u.Phone,
		Location:        u.Location,
		ProfilePicture:  u.ProfilePicture,
		IsActive:        u.IsActive,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

type UserFilter struct {
	Role           Role
	Department     string
	GraduationYear int
	Q              string // 姓名/院系/公司 模糊搜
	ActiveOnly     bool
	Offset         int
	Limit          int
}

type GroupCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type UserStats struct {
	Total           int64          `json:"totalUsers"`
	Active          int64          `json:"activeUsers"`
	ByRole          map[Role]int64 `json:"byRole"`
	Departments     []GroupCount   `json:"departmentStats"`
	GraduationYears []GroupCount   `json:"graduationYearStats"`
}

// UserRepository 持久化契约。
// Create 在单个事务内完成：assign 非空时先原子递增该角色的计数器并回调写入编号，再插入记录；
// 任一唯一约束冲突返回 ErrDuplicateKey，事务整体回滚。
type UserRepository interface {
	Create(ctx context.Context, u *User, assign func(seq int64)) error
	// Identifiers 该角色已分配的全部编号（冲突后用来校准计数器）
	Identifiers(ctx context.Context, role Role) ([]string, error)
	// RaiseSequence 单独提交：计数器不足 floor 时抬到 floor，不会回退
	RaiseSequence(ctx context.Context, role Role, floor int64) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	Update(ctx context.Context, id string, cols map[string]any) error
	Save(ctx context.Context, u *User) error
	Stats(ctx context.Context) (*UserStats, error)
}
