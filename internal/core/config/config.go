package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

// Identity 注册/凭证相关
type Identity struct {
	BcryptCost    int `mapstructure:"bcryptCost"`
	MaxIDAttempts int `mapstructure:"maxIdAttempts"`
}

type Cache struct {
	DirectoryTTLSec int `mapstructure:"directoryTtlSec"`
}

type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	MaxBodyMB   int64 `mapstructure:"maxBodyMB"`
	TimeoutSec  int
	AuthPerMin  int `mapstructure:"authPerMin"` // 每 IP 每分钟登录/注册次数
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	DB       DB
	Redis    Redis `mapstructure:"redis"`
	Identity Identity
	Cache    Cache
	Limits   Limits
	CORS     CORS `mapstructure:"cors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "alumni-connect")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 5000)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 5001)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.issuer", "alumni-connect")
	v.SetDefault("jwt.accessTokenTTLMin", 60*24*7)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:alumni.db")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("identity.bcryptCost", 12)
	v.SetDefault("identity.maxIdAttempts", 5)
	v.SetDefault("cache.directoryTtlSec", 60)
	v.SetDefault("limits.rps", 20)
	v.SetDefault("limits.burst", 40)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.maxBodyMB", 4)
	v.SetDefault("limits.timeoutSec", 10)
	v.SetDefault("limits.authPerMin", 20)
	v.SetDefault("cors.allowOrigins", []string{"http://localhost:3000"})
}

// Read 读取配置；path 为空时依次尝试 CONFIG_PATH 与 ./configs/config.local.yaml
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret must be set")
	}
	return &c, nil
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("%v", err)
	}
	return c
}
