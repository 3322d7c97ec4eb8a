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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Payment      PaymentConfig
	SMTP         SMTPConfig
	Checkout     CheckoutConfig
	Watcher      WatcherConfig
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
	Env          string `envconfig:"LEADMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"LEADMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LEADMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LEADMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"LEADMARKET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LEADMARKET_DB_DSN"`
	Driver string `envconfig:"LEADMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LEADMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"LEADMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LEADMARKET_DB_USER"`
	LegacyPassword string `envconfig:"LEADMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"LEADMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"LEADMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LEADMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LEADMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LEADMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LEADMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LEADMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LEADMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"LEADMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"LEADMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LEADMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LEADMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LEADMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LEADMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LEADMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool   `envconfig:"LEADMARKET_AUTO_MIGRATE" default:"false"`
	GCSAccessMode string `envconfig:"LEADMARKET_GCS_ACCESS_MODE" default:"public"`
	MailerMode    string `envconfig:"LEADMARKET_MAILER_MODE" default:"smtp"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"LEADMARKET_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"LEADMARKET_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"LEADMARKET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"LEADMARKET_GCS_BUCKET_NAME" required:"true"`
	ExportPrefix      string        `envconfig:"LEADMARKET_GCS_EXPORT_PREFIX" default:"exports"`
	DownloadURLExpiry time.Duration `envconfig:"LEADMARKET_GCS_DOWNLOAD_URL_EXPIRY" default:"24h"`
}

// PaymentConfig holds the checkout-link provider credentials.
type PaymentConfig struct {
	AccessToken string `envconfig:"LEADMARKET_PAYMENT_ACCESS_TOKEN" required:"true"`
	BaseURL     string `envconfig:"LEADMARKET_PAYMENT_BASE_URL" default:"https://api.mercadopago.com"`
	Currency    string `envconfig:"LEADMARKET_PAYMENT_CURRENCY" default:"BRL"`
	SuccessURL  string `envconfig:"LEADMARKET_PAYMENT_SUCCESS_URL" required:"true"`
}

type SMTPConfig struct {
	Host     string `envconfig:"LEADMARKET_SMTP_HOST" default:"smtp.gmail.com"`
	Port     int    `envconfig:"LEADMARKET_SMTP_PORT" default:"465"`
	Username string `envconfig:"LEADMARKET_SMTP_USERNAME"`
	Password string `envconfig:"LEADMARKET_SMTP_PASSWORD"`
	From     string `envconfig:"LEADMARKET_SMTP_FROM"`
	FromName string `envconfig:"LEADMARKET_SMTP_FROM_NAME" default:"DiskLeads"`
}

// CheckoutConfig tunes the foreground payment-confirmation wait.
type CheckoutConfig struct {
	PollInterval time.Duration `envconfig:"LEADMARKET_CHECKOUT_POLL_INTERVAL" default:"2500ms"`
	PollAttempts int           `envconfig:"LEADMARKET_CHECKOUT_POLL_ATTEMPTS" default:"60"`
}

// WatcherConfig tunes the background delivery scan.
type WatcherConfig struct {
	Interval time.Duration `envconfig:"LEADMARKET_WATCHER_INTERVAL" default:"15s"`
	LockTTL  time.Duration `envconfig:"LEADMARKET_WATCHER_LOCK_TTL" default:"1m"`
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
