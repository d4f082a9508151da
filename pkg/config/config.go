package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	PayMongo     PayMongoConfig
	Checkout     CheckoutConfig
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
	Env          string `envconfig:"BOOKHAVEN_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOKHAVEN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOKHAVEN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOKHAVEN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOOKHAVEN_DB_DSN"`
	Driver string `envconfig:"BOOKHAVEN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOOKHAVEN_DB_HOST"`
	LegacyPort     int    `envconfig:"BOOKHAVEN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOOKHAVEN_DB_USER"`
	LegacyPassword string `envconfig:"BOOKHAVEN_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOOKHAVEN_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOOKHAVEN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOKHAVEN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOKHAVEN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOKHAVEN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOKHAVEN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOKHAVEN_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOOKHAVEN_REDIS_ADDR"`
	Password     string        `envconfig:"BOOKHAVEN_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOKHAVEN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOKHAVEN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOKHAVEN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOKHAVEN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOKHAVEN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOKHAVEN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOOKHAVEN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOOKHAVEN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOOKHAVEN_JWT_EXPIRATION_MINUTES" required:"true"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PayMongoConfig struct {
	SecretKey         string        `envconfig:"BOOKHAVEN_PAYMONGO_SECRET_KEY"`
	WebhookSecretTest string        `envconfig:"BOOKHAVEN_PAYMONGO_WEBHOOK_SECRET_TEST"`
	WebhookSecretLive string        `envconfig:"BOOKHAVEN_PAYMONGO_WEBHOOK_SECRET_LIVE"`
	BaseURL           string        `envconfig:"BOOKHAVEN_PAYMONGO_BASE_URL" default:"https://api.paymongo.com/v1"`
	Env               string        `envconfig:"BOOKHAVEN_PAYMONGO_ENV" default:"test"`
	Timeout           time.Duration `envconfig:"BOOKHAVEN_PAYMONGO_TIMEOUT" default:"15s"`
}

// Environment returns the normalized PayMongo environment (test/live).
func (p PayMongoConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "test"
	}
	return env
}

// WebhookSecret returns the signing secret for the configured environment.
func (p PayMongoConfig) WebhookSecret() string {
	if p.Environment() == "live" {
		return p.WebhookSecretLive
	}
	return p.WebhookSecretTest
}

type CheckoutConfig struct {
	SuccessURL          string        `envconfig:"BOOKHAVEN_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL           string        `envconfig:"BOOKHAVEN_CHECKOUT_CANCEL_URL" required:"true"`
	PaymentMethodTypes  []string      `envconfig:"BOOKHAVEN_CHECKOUT_PAYMENT_METHOD_TYPES" default:"qrph"`
	WebhookEventTTL     time.Duration `envconfig:"BOOKHAVEN_WEBHOOK_EVENT_TTL" default:"720h"`
	WebhookTimestampMax time.Duration `envconfig:"BOOKHAVEN_WEBHOOK_TIMESTAMP_MAX_AGE" default:"5m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOOKHAVEN_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOOKHAVEN_AUTO_MIGRATE" default:"false"`
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
