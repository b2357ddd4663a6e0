package router

import (
	"sort"
	"sync"

	"alumni-connect/internal/transport/http/ez"
)

// APIModule 模块可选择实现其中一个或两个接口；传入的分组已鉴权
type APIModule interface{ MountAPI(ez.EZ) }
type AdminModule interface{ MountAdmin(ez.EZ) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂），不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 功能模块注册表；同一个 Registry 可同时给用户端和管理端 engine 使用
type Registry struct {
	mu    sync.RWMutex
	api   []APIModule
	admin []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 根据类型断言分发到 API/Admin 列表
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

// MountAPI 在 /api/v1 鉴权分组上挂载所有 API 模块
func (r *Registry) MountAPI(e ez.EZ) {
	if r == nil {
		return
	}
	r.mu.RLock()
	mods := append([]APIModule(nil), r.api...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAPI(e)
	}
}

// MountAdmin 在 /admin/v1 上挂载所有 Admin 模块
func (r *Registry) MountAdmin(e ez.EZ) {
	if r == nil {
		return
	}
	r.mu.RLock()
	mods := append([]AdminModule(nil), r.admin...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool { return priorityOf(mods[i]) < priorityOf(mods[j]) })
	for _, m := range mods {
		m.MountAdmin(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
