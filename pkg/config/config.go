package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "HYSABEE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "HYSABEE_DB_DSN"
	EnvDBHost = "HYSABEE_DB_HOST"
	EnvDBUser = "HYSABEE_DB_USER"
	EnvDBName = "HYSABEE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Dodo          DodoConfig
	Billing       BillingConfig
	Subscriptions SubscriptionCacheConfig
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
	Env          string `envconfig:"HYSABEE_APP_ENV" required:"true"`
	Port         string `envconfig:"HYSABEE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HYSABEE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HYSABEE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HYSABEE_DB_DSN"`
	Driver string `envconfig:"HYSABEE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HYSABEE_DB_HOST"`
	LegacyPort     int    `envconfig:"HYSABEE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HYSABEE_DB_USER"`
	LegacyPassword string `envconfig:"HYSABEE_DB_PASSWORD"`
	LegacyName     string `envconfig:"HYSABEE_DB_NAME"`
	LegacySSLMode  string `envconfig:"HYSABEE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HYSABEE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HYSABEE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HYSABEE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HYSABEE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HYSABEE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HYSABEE_REDIS_ADDR"`
	Password     string        `envconfig:"HYSABEE_REDIS_PASSWORD"`
	DB           int           `envconfig:"HYSABEE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HYSABEE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HYSABEE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HYSABEE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HYSABEE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HYSABEE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HYSABEE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HYSABEE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HYSABEE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"HYSABEE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HYSABEE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HYSABEE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HYSABEE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HYSABEE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HYSABEE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HYSABEE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"HYSABEE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HYSABEE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"HYSABEE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"HYSABEE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"HYSABEE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HYSABEE_AUTO_MIGRATE" default:"false"`
}

// DodoConfig holds credentials for the Dodo Payments billing provider.
type DodoConfig struct {
	APIKey          string        `envconfig:"HYSABEE_DODO_API_KEY"`
	WebhookSecret   string        `envconfig:"HYSABEE_DODO_WEBHOOK_SECRET"`
	Env             string        `envconfig:"HYSABEE_DODO_ENV" default:"test"`
	ReturnURL       string        `envconfig:"HYSABEE_DODO_RETURN_URL"`
	RequestTimeout  time.Duration `envconfig:"HYSABEE_DODO_REQUEST_TIMEOUT" default:"15s"`
	WebhookEventTTL time.Duration `envconfig:"HYSABEE_DODO_WEBHOOK_EVENT_TTL" default:"720h"`
}

// Environment returns the normalized Dodo environment (test/live).
func (d DodoConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(d.Env))
	if env == "" {
		return "test"
	}
	return env
}

type BillingConfig struct {
	BasicMonthlyProductID string `envconfig:"HYSABEE_BILLING_BASIC_MONTHLY_PRODUCT_ID"`
	BasicYearlyProductID  string `envconfig:"HYSABEE_BILLING_BASIC_YEARLY_PRODUCT_ID"`
	ProMonthlyProductID   string `envconfig:"HYSABEE_BILLING_PRO_MONTHLY_PRODUCT_ID"`
	ProYearlyProductID    string `envconfig:"HYSABEE_BILLING_PRO_YEARLY_PRODUCT_ID"`
}

type SubscriptionCacheConfig struct {
	TTL time.Duration `envconfig:"HYSABEE_SUBSCRIPTION_CACHE_TTL" default:"5m"`
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
