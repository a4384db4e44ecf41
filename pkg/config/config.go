package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is applied by envconfig when resolving unset struct tags.
const EnvPrefix = "WORKSHOP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	CatalogDB     DBConfig `split_words:"true"`
	DocsDB        DBConfig `split_words:"true"`
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.CatalogDB.DSN == "" {
		return nil, fmt.Errorf("WORKSHOP_CATALOG_DB_DSN is required")
	}
	if cfg.DocsDB.DSN == "" {
		return nil, fmt.Errorf("WORKSHOP_DOCS_DB_DSN is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WORKSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"WORKSHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WORKSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WORKSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig is shared by the catalog store and the document store; each gets
// its own DSN and pool settings.
type DBConfig struct {
	DSN string `envconfig:"DSN"`

	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WORKSHOP_REDIS_URL"`
	Address      string        `envconfig:"WORKSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"WORKSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"WORKSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WORKSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WORKSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WORKSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WORKSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WORKSHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WORKSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WORKSHOP_JWT_EXPIRATION_MINUTES" default:"15"`
	RefreshTokenTTLMinutes int    `envconfig:"WORKSHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WORKSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WORKSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WORKSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WORKSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WORKSHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"WORKSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"WORKSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"WORKSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WORKSHOP_AUTO_MIGRATE" default:"false"`
}
