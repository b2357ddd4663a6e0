package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alumni-connect/internal/core/database"
	"alumni-connect/internal/domain"
	"alumni-connect/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User, assign func(seq int64)) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if assign != nil {
			seq, err := nextSequence(tx, string(u.Role))
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}
			assign(seq)
		}
		return tx.Create(u).Error
	})
	return wrapWriteErr(err)
}

// nextSequence 原子递增并读取计数器。
// UPDATE 持有行锁直到事务结束，同一角色的并发注册在数据库层串行化。
func nextSequence(tx *gorm.DB, name string) (int64, error) {
	incr := func() *gorm.DB {
		return tx.Model(&user.RoleCounter{}).
			Where("name = ?", name).
			Updates(map[string]any{"value": gorm.Expr("value + 1"), "updated_at": time.Now().UTC()})
	}
	res := incr()
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		// 首次使用：按现有人数播种，兼容计数器上线前的历史数据
		var existing int64
		if err := tx.Model(&domain.User{}).Where("role = ?", name).Count(&existing).Error; err != nil {
			return 0, err
		}
		seed := user.RoleCounter{Name: name, Value: existing, UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return 0, err
		}
		if res = incr(); res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 0 {
			return 0, fmt.Errorf("counter %q missing", name)
		}
	}
	var c user.RoleCounter
	if err := tx.First(&c, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return c.Value, nil
}

func identifierColumn(role domain.Role) (string, bool) {
	switch role {
	case domain.RoleStudent:
		return "student_id", true
	case domain.RoleAlumni:
		return "alumni_id", true
	}
	return "", false
}

func (r *UserRepo) Identifiers(ctx context.Context, role domain.Role) ([]string, error) {
	col, ok := identifierColumn(role)
	if !ok {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("role = ? AND "+col+" IS NOT NULL", role).
		Pluck(col, &ids).Error
	return ids, err
}

// RaiseSequence 在独立事务里提交，不受后续插入失败回滚的影响
func (r *UserRepo) RaiseSequence(ctx context.Context, role domain.Role, floor int64) error {
	name := string(role)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		seed := user.RoleCounter{Name: name, Value: floor, UpdatedAt: now}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Model(&user.RoleCounter{}).
			Where("name = ? AND value < ?", name, floor).
			Updates(map[string]any{"value": floor, "updated_at": now}).Error
	})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", domain.NormalizeEmail(email))
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if d := strings.TrimSpace(f.Department); d != "" {
		q = q.Where("LOWER(department) = ?", strings.ToLower(d))
	}
	if f.GraduationYear > 0 {
		q = q.Where("graduation_year = ?", f.GraduationYear)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(department) LIKE ? OR LOWER(company) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var users []domain.User
	if err := q.Order("created_at DESC").Order("id").Offset(max(0, f.Offset)).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return wrapWriteErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Save 整行回写，不会触发编号分配
func (r *UserRepo) Save(ctx context.Context, u *domain.User) error {
	return wrapWriteErr(r.db.WithContext(ctx).Save(u).Error)
}

func (r *UserRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	db := r.db.WithContext(ctx)
	st := &domain.UserStats{ByRole: map[domain.Role]int64{}}

	var byRole []struct {
		Role  string
		Total int64
	}
	if err := db.Model(&domain.User{}).Select("role, COUNT(*) AS total").Group("role").Scan(&byRole).Error; err != nil {
		return nil, err
	}
	for _, row := range byRole {
		st.ByRole[domain.Role(row.Role)] = row.Total
		st.Total += row.Total
	}
	if err := db.Model(&domain.User{}).Where("is_active = ?", true).Count(&st.Active).Error; err != nil {
		return nil, err
	}

	alumni := func() *gorm.DB { return db.Model(&domain.User{}).Where("role = ?", domain.RoleAlumni) }
	var depts []struct {
		Department string
		Total      int64
	}
	if err := alumni().Select("department, COUNT(*) AS total").
		Group("department").Order("total DESC").Scan(&depts).Error; err != nil {
		return nil, err
	}
	for _, d := range depts {
		st.Departments = append(st.Departments, domain.GroupCount{Key: d.Department, Count: d.Total})
	}
	var years []struct {
		GraduationYear int
		Total          int64
	}
	if err := alumni().Select("graduation_year, COUNT(*) AS total").
		Group("graduation_year").Order("graduation_year DESC").Scan(&years).Error; err != nil {
		return nil, err
	}
	for _, y := range years {
		st.GraduationYears = append(st.GraduationYears, domain.GroupCount{Key: fmt.Sprint(y.GraduationYear), Count: y.Total})
	}
	return st, nil
}

func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", domain.ErrDuplicateKey, err)
	}
	return err
}
