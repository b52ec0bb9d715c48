package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "moodlog"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Analysis     AnalysisConfig
	Seed         SeedConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string   `envconfig:"MOODLOG_APP_ENV" required:"true"`
	Port         string   `envconfig:"MOODLOG_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MOODLOG_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MOODLOG_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"MOODLOG_CORS_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"MOODLOG_DB_DSN"`

	LegacyHost     string `envconfig:"MOODLOG_DB_HOST"`
	LegacyPort     int    `envconfig:"MOODLOG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MOODLOG_DB_USER"`
	LegacyPassword string `envconfig:"MOODLOG_DB_PASSWORD"`
	LegacyName     string `envconfig:"MOODLOG_DB_NAME"`
	LegacySSLMode  string `envconfig:"MOODLOG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOODLOG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOODLOG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOODLOG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOODLOG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOODLOG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MOODLOG_REDIS_ADDR"`
	Password     string        `envconfig:"MOODLOG_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOODLOG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOODLOG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOODLOG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOODLOG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOODLOG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOODLOG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MOODLOG_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MOODLOG_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MOODLOG_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MOODLOG_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MOODLOG_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MOODLOG_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MOODLOG_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MOODLOG_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MOODLOG_ARGON_KEY_LEN" default:"32"`
}

// AnalysisConfig tunes the simulated analysis step.
type AnalysisConfig struct {
	SimulatedLatency time.Duration `envconfig:"MOODLOG_ANALYSIS_SIMULATED_LATENCY" default:"2s"`
}

// SeedConfig controls the one-shot sample-data seeding for new profiles.
type SeedConfig struct {
	GuardTTL time.Duration `envconfig:"MOODLOG_SEED_GUARD_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MOODLOG_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MOODLOG_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MOODLOG_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SeedTopic        string `envconfig:"MOODLOG_PUBSUB_SEED_TOPIC" default:"moodlog-seed-events"`
	SeedSubscription string `envconfig:"MOODLOG_PUBSUB_SEED_SUBSCRIPTION"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MOODLOG_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		"MOODLOG_DB_HOST": db.LegacyHost,
		"MOODLOG_DB_USER": db.LegacyUser,
		"MOODLOG_DB_NAME": db.LegacyName,
	}
	for _, name := range []string{"MOODLOG_DB_HOST", "MOODLOG_DB_USER", "MOODLOG_DB_NAME"} {
		if legacyValues[name] == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either MOODLOG_DB_DSN or %s are required", strings.Join(missing, ", "))
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
