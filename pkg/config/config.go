package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the tracker reads.
const EnvPrefix = "REVTRACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Reports      ReportsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"REVTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"REVTRACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"REVTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REVTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"REVTRACK_DB_DSN"`

	Host     string `envconfig:"REVTRACK_DB_HOST"`
	Port     int    `envconfig:"REVTRACK_DB_PORT" default:"5432"`
	User     string `envconfig:"REVTRACK_DB_USER"`
	Password string `envconfig:"REVTRACK_DB_PASSWORD"`
	Name     string `envconfig:"REVTRACK_DB_NAME"`
	SSLMode  string `envconfig:"REVTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REVTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REVTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REVTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REVTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a Postgres DSN from discrete parts when one was not given.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either REVTRACK_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"REVTRACK_REDIS_URL"`
	Address      string        `envconfig:"REVTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"REVTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"REVTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REVTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REVTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REVTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REVTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REVTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"REVTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"REVTRACK_JWT_ISSUER" default:"revenue-tracker"`
	ExpirationMinutes int    `envconfig:"REVTRACK_JWT_EXPIRATION_MINUTES" default:"720"`
}

type ReportsConfig struct {
	CacheTTL     time.Duration `envconfig:"REVTRACK_REPORTS_CACHE_TTL" default:"5m"`
	CacheEnabled bool          `envconfig:"REVTRACK_REPORTS_CACHE_ENABLED" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REVTRACK_AUTO_MIGRATE" default:"false"`
}
