package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Payment      PaymentConfig
	Checkout     CheckoutConfig
	Cart         CartConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
	Fields      map[string]interface{}
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	PasswordResetURL        string
	BcryptCost              int
	BootstrapAdminEmails    []string
	LoginPath               string
	ResumeTTLMinutes        int
}

// NotificationConfig points at the email function that notifies the operator.
type NotificationConfig struct {
	EmailFunctionURL string
	OperatorEmail    string
	MaxAttempts      int
	TimeoutSeconds   int
}

// PaymentConfig describes the external hosted payment page.
type PaymentConfig struct {
	PageURL       string
	MerchantParam string
	MerchantCode  string
}

// CheckoutConfig controls checkout presentation and fan-out.
type CheckoutConfig struct {
	TaxPercent        string
	EnrollmentWorkers int
	CatalogPath       string
}

// CartConfig controls in-memory session carts.
type CartConfig struct {
	IdleTTLMinutes int
	SessionCookie  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "course-storefront"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			PasswordResetURL:        getEnv("AUTH_PASSWORD_RESET_URL", "http://localhost:3000/reset-password"),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
			BootstrapAdminEmails:    getEnvAsList("AUTH_BOOTSTRAP_ADMIN_EMAILS"),
			LoginPath:               getEnv("AUTH_LOGIN_PATH", "/auth/login"),
			ResumeTTLMinutes:        getEnvAsInt("AUTH_RESUME_TTL_MINUTES", 60),
		},
		Notification: NotificationConfig{
			EmailFunctionURL: getEnv("NOTIFY_EMAIL_FUNCTION_URL", ""),
			OperatorEmail:    getEnv("NOTIFY_OPERATOR_EMAIL", "operator@example.com"),
			MaxAttempts:      getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
			TimeoutSeconds:   getEnvAsInt("NOTIFY_TIMEOUT_SECONDS", 10),
		},
		Payment: PaymentConfig{
			PageURL:       getEnv("PAYMENT_PAGE_URL", "https://payments.example.com/pay"),
			MerchantParam: getEnv("PAYMENT_MERCHANT_PARAM", "merchant"),
			MerchantCode:  getEnv("PAYMENT_MERCHANT_CODE", ""),
		},
		Checkout: CheckoutConfig{
			TaxPercent:        getEnv("CHECKOUT_TAX_PERCENT", "18"),
			EnrollmentWorkers: getEnvAsInt("CHECKOUT_ENROLLMENT_WORKERS", 4),
			CatalogPath:       getEnv("CHECKOUT_CATALOG_PATH", "/courses"),
		},
		Cart: CartConfig{
			IdleTTLMinutes: getEnvAsInt("CART_IDLE_TTL_MINUTES", 120),
			SessionCookie:  getEnv("CART_SESSION_COOKIE", "session_id"),
		},
	}

	cfg.Logger.Development = cfg.App.Env == "development"
	cfg.Logger.Fields = map[string]interface{}{
		"service": cfg.App.Name,
		"env":     cfg.App.Env,
		"version": cfg.App.Version,
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsProduction reports whether APP_ENV is production.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// IdleTTL returns how long an untouched cart survives.
func (c CartConfig) IdleTTL() time.Duration {
	if c.IdleTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// SweepInterval is how often idle carts are evicted; zero when eviction is off.
func (c CartConfig) SweepInterval() time.Duration {
	ttl := c.IdleTTL()
	if ttl <= 0 {
		return 0
	}
	if interval := ttl / 4; interval > time.Minute {
		return interval
	}
	return time.Minute
}

// ResumeTTL returns the lifetime of a resume-after-login marker.
func (a AuthConfig) ResumeTTL() time.Duration {
	if a.ResumeTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.ResumeTTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvAsList splits a comma separated value, dropping blanks and lowercasing.
func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
