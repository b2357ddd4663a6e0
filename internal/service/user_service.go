package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"alumni-connect/internal/core/metrics"
	"alumni-connect/internal/domain"
	"alumni-connect/pkg/utils"
)

const DefaultMaxIDAttempts = 5

// PasswordHasher 凭证管理（bcrypt 实现见 pkg/utils）
type PasswordHasher interface {
	HashPassword(pw string) (string, error)
	CheckPassword(pw, hashed string) bool
}

type Options struct {
	MaxIDAttempts int
	Now           func() time.Time
	// OnChange 注册、资料更新、启停成功后回调（目录缓存失效）
	OnChange func(ctx context.Context, u domain.SafeUser)
}

type UserService struct {
	repo        domain.UserRepository
	hasher      PasswordHasher
	log         *zap.Logger
	maxAttempts int
	now         func() time.Time
	onChange    func(context.Context, domain.SafeUser)

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo domain.UserRepository, hasher PasswordHasher, l *zap.Logger, opts Options) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	if opts.MaxIDAttempts <= 0 {
		opts.MaxIDAttempts = DefaultMaxIDAttempts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &UserService{
		repo:        repo,
		hasher:      hasher,
		log:         l.Named("users"),
		maxAttempts: opts.MaxIDAttempts,
		now:         opts.Now,
		onChange:    opts.OnChange,
	}
}

func (s *UserService) clock() time.Time { return s.now().UTC().Truncate(time.Microsecond) }

// bump 返回严格大于 prev 的时间戳
func (s *UserService) bump(prev time.Time) time.Time {
	now := s.clock()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

func (s *UserService) changed(ctx context.Context, u domain.SafeUser) domain.SafeUser {
	if s.onChange != nil {
		s.onChange(ctx, u)
	}
	return u
}

// roleOf 校验失败时的角色标签；非法值交给 metrics 归为 unknown
func roleOf(in domain.RegisterInput) string {
	r := domain.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if r == "" {
		r = domain.RoleStudent
	}
	return string(r)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
}

// Register 自助注册（学生/校友）。admin 账号只能通过运维命令创建。
func (s *UserService) Register(ctx context.Context, in domain.RegisterInput) (domain.SafeUser, error) {
	reg, err := domain.ValidateRegistration(in, s.clock())
	if err != nil {
		metrics.RecordRegistration(roleOf(in), "invalid")
		return domain.SafeUser{}, err
	}
	if reg.Role == domain.RoleAdmin {
		ve := &domain.ValidationError{}
		ve.Add("role", "admin accounts cannot be self-registered")
		metrics.RecordRegistration(string(reg.Role), "invalid")
		return domain.SafeUser{}, ve
	}
	return s.create(ctx, reg)
}

// ProvisionAdmin 运维渠道创建管理员
func (s *UserService) ProvisionAdmin(ctx context.Context, in domain.RegisterInput) (domain.SafeUser, error) {
	in.Role = domain.RoleAdmin
	reg, err := domain.ValidateRegistration(in, s.clock())
	if err != nil {
		return domain.SafeUser{}, err
	}
	return s.create(ctx, reg)
}

func (s *UserService) create(ctx context.Context, reg domain.Registration) (domain.SafeUser, error) {
	role := string(reg.Role)
	log := s.log.With(zap.String("email", reg.Email), zap.String("role", role))

	// 预检只为尽早失败，真正的保证是唯一索引
	if taken, err := s.emailTaken(ctx, reg.Email); err != nil {
		return domain.SafeUser{}, err
	} else if taken {
		metrics.RecordRegistration(role, "duplicate_email")
		return domain.SafeUser{}, domain.ErrDuplicateEmail
	}

	hash, err := s.hasher.HashPassword(reg.Password)
	if err != nil {
		log.Error("password hashing failed", zap.Error(err))
		metrics.RecordRegistration(role, "credential_error")
		return domain.SafeUser{}, fmt.Errorf("%w: %v", domain.ErrCredential, err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		now := s.clock()
		u := reg.NewUser(utils.NewID(), hash, now)
		err := s.repo.Create(ctx, u, identifierAssigner(u, now))
		if err == nil {
			log.Info("user registered", zap.String("id", u.ID), zap.String("identifier", u.Identifier()))
			metrics.RecordRegistration(role, "created")
			return s.changed(ctx, u.Safe()), nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			log.Error("create user failed", zap.Error(err))
			metrics.RecordRegistration(role, "error")
			return domain.SafeUser{}, unavailable("create user", err)
		}

		// 邮箱冲突不重试；否则是编号冲突，重新分配
		taken, e := s.emailTaken(ctx, reg.Email)
		if e != nil {
			return domain.SafeUser{}, e
		}
		if taken {
			metrics.RecordRegistration(role, "duplicate_email")
			return domain.SafeUser{}, domain.ErrDuplicateEmail
		}
		log.Warn("identifier collision, retrying", zap.Int("attempt", attempt), zap.Error(err))
		metrics.RecordIdentifierRetry(role)
		// 失败事务里的计数器递增已随之回滚，先把计数器校准到已用的最大序号
		if err := s.resyncSequence(ctx, reg.Role); err != nil {
			log.Warn("sequence resync failed", zap.Error(err))
		}
	}

	log.Error("identifier retries exhausted", zap.Int("attempts", s.maxAttempts))
	metrics.RecordRegistration(role, "identifier_conflict")
	return domain.SafeUser{}, domain.ErrIdentifierConflict
}

// resyncSequence 把角色计数器抬到已分配编号中的最大序号
func (s *UserService) resyncSequence(ctx context.Context, role domain.Role) error {
	ids, err := s.repo.Identifiers(ctx, role)
	if err != nil {
		return err
	}
	var highest int64
	for _, id := range ids {
		if seq, ok := SequenceOf(id); ok && seq > highest {
			highest = seq
		}
	}
	if highest == 0 {
		return nil
	}
	return s.repo.RaiseSequence(ctx, role, highest)
}

func (s *UserService) emailTaken(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, unavailable("lookup email", err)
	}
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.HashPassword("alumni-connect-timing-dummy")
	})
	return s.dummyHash
}

// Authenticate 账号不存在与密码错误对外都是 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.SafeUser, error) {
	email = domain.NormalizeEmail(email)
	u, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		// 走一次等价的 bcrypt 比较，避免通过耗时区分账号是否存在
		s.hasher.CheckPassword(password, s.dummy())
		s.log.Info("login failed", zap.String("email", email), zap.String("reason", "no such account"))
		metrics.RecordAuthAttempt(false)
		return domain.SafeUser{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.SafeUser{}, unavailable("lookup user", err)
	}
	if !s.hasher.CheckPassword(password, u.PasswordHash) {
		s.log.Info("login failed", zap.String("email", email), zap.String("reason", "password mismatch"))
		metrics.RecordAuthAttempt(false)
		return domain.SafeUser{}, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.log.Info("login refused", zap.String("id", u.ID), zap.String("reason", "inactive"))
		metrics.RecordAuthAttempt(false)
		return domain.SafeUser{}, domain.ErrAccountDisabled
	}

	now := s.bump(u.UpdatedAt)
	if err := s.repo.Update(ctx, u.ID, map[string]any{"last_login": now, "updated_at": now}); err != nil {
		return domain.SafeUser{}, unavailable("record login", err)
	}
	u.LastLogin = &now
	u.UpdatedAt = now
	metrics.RecordAuthAttempt(true)
	s.log.Info("login ok", zap.String("id", u.ID))
	return u.Safe(), nil
}

func (s *UserService) Profile(ctx context.Context, id string) (domain.SafeUser, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return domain.SafeUser{}, err
	}
	return u.Safe(), nil
}

func (s *UserService) find(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("lookup user", err)
	}
	return u, nil
}

// UpdateProfile 局部更新；只有显式携带 Password 时才重新哈希。updatedAt 总是递增。
func (s *UserService) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (domain.SafeUser, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return domain.SafeUser{}, err
	}
	upd, err := p.Normalize(u.Role, s.clock())
	if err != nil {
		return domain.SafeUser{}, err
	}

	cols := upd.Columns()
	if upd.PasswordChanged() {
		hash, err := s.hasher.HashPassword(*upd.Password)
		if err != nil {
			s.log.Error("password hashing failed", zap.String("id", id), zap.Error(err))
			return domain.SafeUser{}, fmt.Errorf("%w: %v", domain.ErrCredential, err)
		}
		cols["password_hash"] = hash
	}
	cols["updated_at"] = s.bump(u.UpdatedAt)

	if err := s.repo.Update(ctx, id, cols); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SafeUser{}, err
		}
		return domain.SafeUser{}, unavailable("update profile", err)
	}
	s.log.Info("profile updated", zap.String("id", id), zap.Int("fields", len(cols)-1), zap.Bool("password", upd.PasswordChanged()))
	out, err := s.Profile(ctx, id)
	if err != nil {
		return domain.SafeUser{}, err
	}
	return s.changed(ctx, out), nil
}

// SetActive 软停用/恢复；只写 is_active 和 updated_at，不覆盖并发写入的其他列
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (domain.SafeUser, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return domain.SafeUser{}, err
	}
	now := s.bump(u.UpdatedAt)
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": active, "updated_at": now}); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.SafeUser{}, err
		}
		return domain.SafeUser{}, unavailable("set active", err)
	}
	u.IsActive = active
	u.UpdatedAt = now
	s.log.Info("user activation changed", zap.String("id", id), zap.Bool("active", active))
	return s.changed(ctx, u.Safe()), nil
}

func (s *UserService) List(ctx context.Context, f domain.UserFilter) ([]domain.SafeUser, int64, error) {
	users, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, unavailable("list users", err)
	}
	out := make([]domain.SafeUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Safe())
	}
	return out, total, nil
}

func (s *UserService) Stats(ctx context.Context) (*domain.UserStats, error) {
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, unavailable("user stats", err)
	}
	return st, nil
}
