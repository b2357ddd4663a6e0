package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"alumni-connect/internal/core/cache"
	"alumni-connect/internal/domain"
)

const dirKeyPrefix = "dir:"

type DirectoryQuery struct {
	Q              string
	Department     string
	GraduationYear int
	Page           int
	Size           int
}

func (q DirectoryQuery) normalized() DirectoryQuery {
	q.Q = strings.TrimSpace(q.Q)
	q.Department = strings.TrimSpace(q.Department)
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}
	return q
}

func (q DirectoryQuery) cacheKey(kind string) string {
	v := url.Values{}
	v.Set("q", strings.ToLower(q.Q))
	v.Set("dept", strings.ToLower(q.Department))
	v.Set("year", strconv.Itoa(q.GraduationYear))
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	return dirKeyPrefix + kind + ":" + v.Encode()
}

type DirectoryPage struct {
	List  []domain.SafeUser `json:"list"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

// DirectoryService 校友目录（只读，仅在职账号）。cache 为 nil 时直连数据库。
type DirectoryService struct {
	repo  domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewDirectoryService(repo domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *DirectoryService {
	if l == nil {
		l = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DirectoryService{repo: repo, cache: c, ttl: ttl, log: l.Named("directory")}
}

func (d *DirectoryService) Alumni(ctx context.Context, q DirectoryQuery) (*DirectoryPage, error) {
	return d.page(ctx, "alumni", q.normalized())
}

// Mentors 可接受辅导请求的校友
func (d *DirectoryService) Mentors(ctx context.Context, department string, page, size int) (*DirectoryPage, error) {
	return d.page(ctx, "mentors", DirectoryQuery{Department: department, Page: page, Size: size}.normalized())
}

func (d *DirectoryService) page(ctx context.Context, kind string, q DirectoryQuery) (*DirectoryPage, error) {
	out, err := cache.LoadJSON(ctx, d.cache, q.cacheKey(kind), d.ttl, func(ctx context.Context) (*DirectoryPage, error) {
		users, total, err := d.repo.List(ctx, domain.UserFilter{
			Role:           domain.RoleAlumni,
			Department:     q.Department,
			GraduationYear: q.GraduationYear,
			Q:              q.Q,
			ActiveOnly:     true,
			Offset:         (q.Page - 1) * q.Size,
			Limit:          q.Size,
		})
		if err != nil {
			return nil, err
		}
		p := &DirectoryPage{List: make([]domain.SafeUser, 0, len(users)), Total: total, Page: q.Page, Size: q.Size}
		for i := range users {
			p.List = append(p.List, users[i].Safe())
		}
		return p, nil
	})
	if err != nil {
		d.log.Warn("directory query failed", zap.String("kind", kind), zap.Error(err))
		return nil, unavailable(fmt.Sprintf("list %s", kind), err)
	}
	return out, nil
}

// Alumnus 单个校友公开资料；非校友或已停用视为不存在
func (d *DirectoryService) Alumnus(ctx context.Context, id string) (domain.SafeUser, error) {
	u, err := d.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.SafeUser{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.SafeUser{}, unavailable("lookup alumnus", err)
	}
	if u.Role != domain.RoleAlumni || !u.IsActive {
		return domain.SafeUser{}, domain.ErrNotFound
	}
	return u.Safe(), nil
}

// Invalidate 校友资料变化后清空目录缓存；失败只记日志，最坏情况等 TTL 过期
func (d *DirectoryService) Invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	n, err := d.cache.DeletePrefix(ctx, dirKeyPrefix)
	if err != nil {
		d.log.Warn("directory cache invalidation failed", zap.Error(err))
		return
	}
	d.log.Debug("directory cache invalidated", zap.Int("keys", n))
}

// OnUserChange 只有校友的变化会影响目录
func (d *DirectoryService) OnUserChange(ctx context.Context, u domain.SafeUser) {
	if u.Role == domain.RoleAlumni {
		d.Invalidate(ctx)
	}
}
