package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "STOCKLINE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and error messages.
const (
	EnvAppEnv   = "STOCKLINE_APP_ENV"
	EnvPort     = "STOCKLINE_APP_PORT"
	EnvDBDSN    = "STOCKLINE_DB_DSN"
	EnvDBHost   = "STOCKLINE_DB_HOST"
	EnvDBUser   = "STOCKLINE_DB_USER"
	EnvDBName   = "STOCKLINE_DB_NAME"
	EnvRedisURL = "STOCKLINE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Forecast     ForecastConfig
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
	Env          string `envconfig:"STOCKLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKLINE_DB_DSN"`
	Driver string `envconfig:"STOCKLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKLINE_DB_USER"`
	LegacyPassword string `envconfig:"STOCKLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig backs the production-run idempotency cache. Leaving the
// URL empty disables idempotency replay entirely.
type RedisConfig struct {
	URL          string        `envconfig:"STOCKLINE_REDIS_URL"`
	PoolSize     int           `envconfig:"STOCKLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKLINE_AUTO_MIGRATE" default:"false"`
}

// ForecastConfig points at the optional advisory forecast service.
// The engine never depends on it for correctness.
type ForecastConfig struct {
	BaseURL string        `envconfig:"STOCKLINE_FORECAST_BASE_URL"`
	Timeout time.Duration `envconfig:"STOCKLINE_FORECAST_TIMEOUT" default:"10s"`
}

func (f ForecastConfig) Enabled() bool {
	return strings.TrimSpace(f.BaseURL) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
