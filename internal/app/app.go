// Package app 三个入口（api / admin / create_admin）共用的装配逻辑
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"alumni-connect/internal/core/auth"
	"alumni-connect/internal/core/cache"
	"alumni-connect/internal/core/config"
	"alumni-connect/internal/core/database"
	"alumni-connect/internal/feature/dashboard"
	"alumni-connect/internal/feature/event"
	"alumni-connect/internal/feature/mentorship"
	"alumni-connect/internal/feature/user"
	"alumni-connect/internal/repo"
	"alumni-connect/internal/service"
	"alumni-connect/internal/transport/http/router"
	"alumni-connect/pkg/utils"
)

type App struct {
	Cfg       *config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Cache     *cache.Cache // nil 表示未启用
	JWT       *auth.JWTer
	Users     *service.UserService
	Directory *service.DirectoryService

	userRepo *repo.UserRepo
}

// Models 全部需要迁移的表
func Models() []any {
	var ms []any
	ms = append(ms, user.Models()...)
	ms = append(ms, event.Models()...)
	ms = append(ms, mentorship.Models()...)
	return ms
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, func(), error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
			if sqlDB, e := db.DB(); e == nil {
				_ = sqlDB.Close()
			}
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	// redis 可选：连不上只关闭目录缓存
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Ping(pctx)
		cancel()
		if err != nil {
			l.Warn("redis unavailable, directory cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Close()
			c = nil
		} else {
			l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	userRepo := repo.NewUserRepo(db)
	dir := service.NewDirectoryService(userRepo, c, time.Duration(cfg.Cache.DirectoryTTLSec)*time.Second, l)
	a := &App{
		Cfg:   cfg,
		Log:   l,
		DB:    db,
		Cache: c,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Users: service.NewUserService(userRepo, utils.NewHasher(cfg.Identity.BcryptCost), l, service.Options{
			MaxIDAttempts: cfg.Identity.MaxIDAttempts,
			OnChange:      dir.OnUserChange,
		}),
		Directory: dir,
		userRepo:  userRepo,
	}

	cleanup := func() {
		if a.Cache != nil {
			_ = a.Cache.Close()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return a, cleanup, nil
}

// Modules 功能模块注册表（events / mentorship / dashboard）
func (a *App) Modules() *router.Registry {
	return router.NewRegistry(
		event.NewModule(a.DB),
		mentorship.NewModule(a.DB, a.userRepo, a.Directory),
		dashboard.NewModule(a.DB, a.Users),
	)
}

func (a *App) Deps() router.Deps {
	mode := gin.DebugMode
	if a.Cfg.App.Env == "prod" || a.Cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	return router.Deps{
		Log:       a.Log,
		JWT:       a.JWT,
		Users:     a.Users,
		Directory: a.Directory,
		Modules:   a.Modules(),
		Limits:    a.Cfg.Limits,
		CORS:      a.Cfg.CORS.AllowOrigins,
		Mode:      mode,
	}
}
