package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	Tax          TaxConfig
	Stripe       StripeConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Tax.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUOTECART_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTECART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUOTECART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTECART_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"QUOTECART_LOG_FORMAT" default:"json"`

	// MetricsAddr exposes /metrics on the background workers; empty disables it.
	MetricsAddr string `envconfig:"QUOTECART_METRICS_ADDR"`

	CORSOrigins []string `envconfig:"QUOTECART_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUOTECART_DB_DSN"`
	Driver string `envconfig:"QUOTECART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUOTECART_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTECART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTECART_DB_USER"`
	LegacyPassword string `envconfig:"QUOTECART_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTECART_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTECART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTECART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTECART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTECART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTECART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"QUOTECART_DB_SLOW_QUERY" default:"200ms"`
	LogQueries         bool          `envconfig:"QUOTECART_DB_LOG_QUERIES" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTECART_REDIS_URL"`
	Address      string        `envconfig:"QUOTECART_REDIS_ADDR"`
	Password     string        `envconfig:"QUOTECART_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTECART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTECART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTECART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTECART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTECART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTECART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"QUOTECART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"QUOTECART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"QUOTECART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CartConfig controls the anonymous cart cookie and checkout locking.
type CartConfig struct {
	CookieName       string        `envconfig:"QUOTECART_CART_COOKIE_NAME" default:"quote_id"`
	CookieTTL        time.Duration `envconfig:"QUOTECART_CART_COOKIE_TTL" default:"720h"`
	CookieSecure     bool          `envconfig:"QUOTECART_CART_COOKIE_SECURE" default:"true"`
	CheckoutLockTTL  time.Duration `envconfig:"QUOTECART_CHECKOUT_LOCK_TTL" default:"30s"`
}

type TaxConfig struct {
	Provider string `envconfig:"QUOTECART_TAX_PROVIDER" default:"none"`
	FlatRate string `envconfig:"QUOTECART_TAX_FLAT_RATE" default:"0"`
	TaxCode  string `envconfig:"QUOTECART_TAX_CODE" default:"txcd_99999999"`

	BreakerMaxRequests  uint32        `envconfig:"QUOTECART_TAX_BREAKER_MAX_REQUESTS" default:"1"`
	BreakerInterval     time.Duration `envconfig:"QUOTECART_TAX_BREAKER_INTERVAL" default:"60s"`
	BreakerTimeout      time.Duration `envconfig:"QUOTECART_TAX_BREAKER_TIMEOUT" default:"30s"`
	BreakerFailureRatio float64       `envconfig:"QUOTECART_TAX_BREAKER_FAILURE_RATIO" default:"0.5"`
	BreakerMinRequests  uint32        `envconfig:"QUOTECART_TAX_BREAKER_MIN_REQUESTS" default:"5"`
}

// Rate returns the flat tax rate as a fraction, e.g. 0.0825.
func (t TaxConfig) Rate() decimal.Decimal {
	rate, err := decimal.NewFromString(strings.TrimSpace(t.FlatRate))
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// ProviderName returns the normalized provider selector.
func (t TaxConfig) ProviderName() string {
	name := strings.ToLower(strings.TrimSpace(t.Provider))
	if name == "" {
		return TaxProviderNone
	}
	return name
}

func (t TaxConfig) validate() error {
	switch t.ProviderName() {
	case TaxProviderNone, TaxProviderStripe:
	case TaxProviderFlat:
		rate, err := decimal.NewFromString(strings.TrimSpace(t.FlatRate))
		if err != nil {
			return fmt.Errorf("%s must be a decimal: %w", EnvTaxFlatRate, err)
		}
		if rate.IsNegative() {
			return fmt.Errorf("%s must not be negative", EnvTaxFlatRate)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvTaxProvider, t.Provider)
	}
	return nil
}

type StripeConfig struct {
	APIKey   string `envconfig:"QUOTECART_STRIPE_API_KEY"`
	Env      string `envconfig:"QUOTECART_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"QUOTECART_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether a Stripe API key has been configured.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

// OutboxConfig tunes the publisher that relays outbox rows to Redis streams.
type OutboxConfig struct {
	BatchSize      int   `envconfig:"QUOTECART_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int   `envconfig:"QUOTECART_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int   `envconfig:"QUOTECART_OUTBOX_MAX_ATTEMPTS" default:"10"`
	StreamMaxLen   int64 `envconfig:"QUOTECART_OUTBOX_STREAM_MAXLEN" default:"10000"`
}

// MaintenanceConfig schedules the cleanup jobs run by the cron worker.
type MaintenanceConfig struct {
	Interval        time.Duration `envconfig:"QUOTECART_MAINTENANCE_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"QUOTECART_MAINTENANCE_LOCK_TTL" default:"10m"`
	OutboxRetention time.Duration `envconfig:"QUOTECART_OUTBOX_RETENTION" default:"720h"`
	StaleQuoteAge   time.Duration `envconfig:"QUOTECART_STALE_QUOTE_AGE" default:"720h"`
	StaleQuoteBatch int           `envconfig:"QUOTECART_STALE_QUOTE_BATCH" default:"500"`

	// Jobs limits the worker to the named jobs; empty runs all of them.
	Jobs []string `envconfig:"QUOTECART_MAINTENANCE_JOBS"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"QUOTECART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"QUOTECART_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = defaultSQLiteDSN
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
