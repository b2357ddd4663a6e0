package ez

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	mdw "alumni-connect/internal/transport/http/middleware"
	resp "alumni-connect/internal/transport/http/response"
	"alumni-connect/pkg/utils"
)

// Hook
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) *gorm.DB // 自定义筛选/排序
	AfterGet     func(c *gin.Context, m *T)
}

// CrudConfig 按归属人隔离的通用 CRUD；表结构由调用方提前迁移
type CrudConfig[T any] struct {
	DB   *gorm.DB
	EZ   EZ // 已鉴权分组（能拿 userId）
	Path string
	New  func() *T

	Hooks CrudHooks[T]

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool

	IDField    string // 默认 "ID"
	OwnerField string // 默认优先 "OwnerID"，其次 "UserID"/"UID"

	ManualID bool          // true 时不自动生成 ID
	IDGen    func() string // 默认 utils.NewID

	// 列表排序，为空则按 ID DESC
	OrderBy string // 例如 "starts_at ASC"
}

// 反射 & 工具
func (c *CrudConfig[T]) idFieldCandidates() []string {
	if c.IDField != "" {
		return []string{c.IDField, "ID", "Id"}
	}
	return []string{"ID", "Id"}
}

func (c *CrudConfig[T]) ownerFieldCandidates() []string {
	if c.OwnerField != "" {
		return []string{c.OwnerField, "OwnerID", "UserID", "UID"}
	}
	return []string{"OwnerID", "UserID", "UID"}
}

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	// 按候选顺序匹配，保证显式配置的字段优先
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		if !ok || f.PkgPath != "" || len(f.Index) != 1 {
			continue
		}
		fv := v.Field(f.Index[0])
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func readStringField(obj any, candidates []string) (string, bool) {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return "", false
	}
	return *p, true
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			// ID / OwnerID 这类连续大写只在词首断开
			if i > 0 && (unicode.IsLower(rs[i-1]) || (i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Paging 列表分页参数（page 从 1 开始，size 上限 100）
func Paging(c *gin.Context) (page, size, offset int) {
	page = atoiDefault(c.Query("page"), 1)
	size = atoiDefault(c.Query("size"), 20)
	if size > 100 {
		size = 20
	}
	return page, size, (page - 1) * size
}

// Crud 注册（无需模型实现任何接口）
func Crud[T any](cfg CrudConfig[T]) {
	// 默认放开所有操作
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	if cfg.IDGen == nil {
		cfg.IDGen = utils.NewID
	}
	e := cfg.EZ
	g := e.Group()

	idFieldNames := cfg.idFieldCandidates()
	ownerFieldNames := cfg.ownerFieldCandidates()

	// 查询条件：id + owner
	scoped := func(id, uid string) *T {
		f := cfg.New()
		_ = writeStringField(f, idFieldNames, id)
		_ = writeStringField(f, ownerFieldNames, uid)
		return f
	}
	findOwned := func(c *gin.Context, id, uid string) (*T, error) {
		m := cfg.New()
		err := cfg.DB.WithContext(c).Where(scoped(id, uid)).First(m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("not found")
		}
		if err != nil {
			return nil, Internal("query failed", err)
		}
		return m, nil
	}
	owner := func(c *gin.Context) (string, bool) {
		uid := c.GetString(mdw.KeyUserID)
		if uid == "" {
			e.Fail(c, Unauthorized("unauthorized"))
			return "", false
		}
		return uid, true
	}

	// Create
	if cfg.AllowCreate {
		g.POST(cfg.Path, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			m := cfg.New()
			if err := c.ShouldBindJSON(m); err != nil {
				e.Fail(c, BindError(err))
				return
			}
			if !cfg.ManualID {
				if id, ok := readStringField(m, idFieldNames); !ok {
					e.Fail(c, Internal("id field not found", nil))
					return
				} else if strings.TrimSpace(id) == "" {
					_ = writeStringField(m, idFieldNames, cfg.IDGen())
				}
			}
			// 写 Owner（覆盖客户端传入值）
			if !writeStringField(m, ownerFieldNames, uid) {
				e.Fail(c, Internal("owner field not found", nil))
				return
			}
			if cfg.Hooks.BeforeCreate != nil {
				if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
					e.Fail(c, err)
					return
				}
			}
			if err := cfg.DB.WithContext(c).Create(m).Error; err != nil {
				e.Fail(c, Internal("create failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			c.JSON(http.StatusOK, resp.OK(m))
		})
	}

	// List（我的）
	if cfg.AllowList {
		g.GET(cfg.Path, func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			page, size, offset := Paging(c)

			// 用结构体 Where 自动映射列名，避免手写 owner 列
			ownerFilter := cfg.New()
			if !writeStringField(ownerFilter, ownerFieldNames, uid) {
				e.Fail(c, Internal("owner field not found", nil))
				return
			}
			q := cfg.DB.WithContext(c).Model(cfg.New()).Where(ownerFilter)
			if cfg.Hooks.ScopeList != nil {
				q = cfg.Hooks.ScopeList(c, q)
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				e.Fail(c, Internal("count failed", err))
				return
			}
			if cfg.OrderBy != "" {
				q = q.Order(cfg.OrderBy)
			} else {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: toSnake(idFieldNames[0])}, Desc: true})
			}
			var items []T
			if err := q.Limit(size).Offset(offset).Find(&items).Error; err != nil {
				e.Fail(c, Internal("list failed", err))
				return
			}
			if cfg.Hooks.AfterGet != nil {
				for i := range items {
					cfg.Hooks.AfterGet(c, &items[i])
				}
			}
			c.JSON(http.StatusOK, resp.OK(gin.H{
				"list": items, "total": total, "page": page, "size": size,
			}))
		})
	}

	// Get
	if cfg.AllowGet {
		g.GET(cfg.Path+"/:id", func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			m, err := findOwned(c, c.Param("id"), uid)
			if err != nil {
				e.Fail(c, err)
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			c.JSON(http.StatusOK, resp.OK(m))
		})
	}

	// Update
	if cfg.AllowUpdate {
		g.PUT(cfg.Path+"/:id", func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			id := c.Param("id")
			// 先确认归属
			if _, err := findOwned(c, id, uid); err != nil {
				e.Fail(c, err)
				return
			}
			in := cfg.New()
			if err := c.ShouldBindJSON(in); err != nil {
				e.Fail(c, BindError(err))
				return
			}
			// 强制保持 ID/Owner
			_ = writeStringField(in, idFieldNames, id)
			_ = writeStringField(in, ownerFieldNames, uid)
			if cfg.Hooks.BeforeUpdate != nil {
				if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
					e.Fail(c, err)
					return
				}
			}
			if err := cfg.DB.WithContext(c).Model(cfg.New()).Where(scoped(id, uid)).Updates(in).Error; err != nil {
				e.Fail(c, Internal("update failed", err))
				return
			}
			m, err := findOwned(c, id, uid)
			if err != nil {
				e.Fail(c, err)
				return
			}
			if cfg.Hooks.AfterGet != nil {
				cfg.Hooks.AfterGet(c, m)
			}
			c.JSON(http.StatusOK, resp.OK(m))
		})
	}

	// Delete
	if cfg.AllowDelete {
		g.DELETE(cfg.Path+"/:id", func(c *gin.Context) {
			uid, ok := owner(c)
			if !ok {
				return
			}
			id := c.Param("id")
			res := cfg.DB.WithContext(c).Where(scoped(id, uid)).Delete(cfg.New())
			if res.Error != nil {
				e.Fail(c, Internal("delete failed", res.Error))
				return
			}
			if res.RowsAffected == 0 {
				e.Fail(c, NotFound("not found"))
				return
			}
			c.JSON(http.StatusOK, resp.OK(gin.H{"id": id}))
		})
	}
}
