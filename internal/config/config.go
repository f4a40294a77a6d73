package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Manual-run dedupe scopes for recurring templates.
const (
	ManualDedupeTimestamp = "timestamp"
	ManualDedupePeriod    = "period"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Log       LogConfig
	CORS      CORSConfig
	Email     EmailConfig
	Tenant    TenantConfig
	Documents DocumentsConfig
	Recurring RecurringConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// TenantConfig selects the business entity served by this process.
type TenantConfig struct {
	// ID may be empty when the database holds exactly one tenant.
	ID string `mapstructure:"id"`
}

// DocumentsConfig holds defaults applied to commercial documents.
type DocumentsConfig struct {
	DefaultPaymentTermsDays int `mapstructure:"default_payment_terms_days"`
	QuoteValidityDays       int `mapstructure:"quote_validity_days"`
}

// RecurringConfig holds recurring invoice scheduler settings.
type RecurringConfig struct {
	WorkerEnabled     bool          `mapstructure:"worker_enabled"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	TickTimeout       time.Duration `mapstructure:"tick_timeout"`
	CronSecret        string        `mapstructure:"cron_secret"`
	ManualDedupeScope string        `mapstructure:"manual_dedupe_scope"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds settings for validating externally issued access tokens.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// S3Config holds AWS S3 settings. An empty Bucket disables PDF archiving.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FACTURO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTURO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "facturo")
	v.SetDefault("db.password", "facturo_secret")
	v.SetDefault("db.name", "facturo_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "facturo")
	v.SetDefault("jwt.audience", "facturo-api")

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "billing@facturo.local")
	v.SetDefault("email.from_name", "Facturo")

	v.SetDefault("tenant.id", "")

	v.SetDefault("documents.default_payment_terms_days", 30)
	v.SetDefault("documents.quote_validity_days", 30)

	// Recurring scheduler defaults
	v.SetDefault("recurring.worker_enabled", false)
	v.SetDefault("recurring.poll_interval", "1h")
	v.SetDefault("recurring.tick_timeout", "5m")
	v.SetDefault("recurring.cron_secret", "")
	v.SetDefault("recurring.manual_dedupe_scope", ManualDedupeTimestamp)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                          "FACTURO_SERVER_PORT",
		"server.read_timeout":                  "FACTURO_SERVER_READ_TIMEOUT",
		"server.write_timeout":                 "FACTURO_SERVER_WRITE_TIMEOUT",
		"server.environment":                   "FACTURO_SERVER_ENVIRONMENT",
		"db.host":                              "FACTURO_DB_HOST",
		"db.port":                              "FACTURO_DB_PORT",
		"db.user":                              "FACTURO_DB_USER",
		"db.password":                          "FACTURO_DB_PASSWORD",
		"db.name":                              "FACTURO_DB_NAME",
		"db.sslmode":                           "FACTURO_DB_SSLMODE",
		"db.max_open":                          "FACTURO_DB_MAX_OPEN",
		"db.max_idle":                          "FACTURO_DB_MAX_IDLE",
		"jwt.secret":                           "FACTURO_JWT_SECRET",
		"jwt.issuer":                           "FACTURO_JWT_ISSUER",
		"jwt.audience":                         "FACTURO_JWT_AUDIENCE",
		"s3.region":                            "FACTURO_S3_REGION",
		"s3.bucket":                            "FACTURO_S3_BUCKET",
		"s3.endpoint":                          "FACTURO_S3_ENDPOINT",
		"s3.access_key":                        "FACTURO_S3_ACCESS_KEY",
		"s3.secret_key":                        "FACTURO_S3_SECRET_KEY",
		"s3.presign_expiry":                    "FACTURO_S3_PRESIGN_EXPIRY",
		"log.level":                            "FACTURO_LOG_LEVEL",
		"log.format":                           "FACTURO_LOG_FORMAT",
		"cors.allowed_origins":                 "FACTURO_CORS_ALLOWED_ORIGINS",
		"email.provider":                       "FACTURO_EMAIL_PROVIDER",
		"email.region":                         "FACTURO_EMAIL_REGION",
		"email.from_address":                   "FACTURO_EMAIL_FROM_ADDRESS",
		"email.from_name":                      "FACTURO_EMAIL_FROM_NAME",
		"tenant.id":                            "FACTURO_TENANT_ID",
		"documents.default_payment_terms_days": "FACTURO_DOCUMENTS_DEFAULT_PAYMENT_TERMS_DAYS",
		"documents.quote_validity_days":        "FACTURO_DOCUMENTS_QUOTE_VALIDITY_DAYS",
		"recurring.worker_enabled":             "FACTURO_RECURRING_WORKER_ENABLED",
		"recurring.poll_interval":              "FACTURO_RECURRING_POLL_INTERVAL",
		"recurring.tick_timeout":               "FACTURO_RECURRING_TICK_TIMEOUT",
		"recurring.cron_secret":                "FACTURO_RECURRING_CRON_SECRET",
		"recurring.manual_dedupe_scope":        "FACTURO_RECURRING_MANUAL_DEDUPE_SCOPE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FACTURO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FACTURO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:   v.GetString("jwt.secret"),
		Issuer:   v.GetString("jwt.issuer"),
		Audience: v.GetString("jwt.audience"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	cfg.Tenant = TenantConfig{ID: v.GetString("tenant.id")}

	cfg.Documents = DocumentsConfig{
		DefaultPaymentTermsDays: v.GetInt("documents.default_payment_terms_days"),
		QuoteValidityDays:       v.GetInt("documents.quote_validity_days"),
	}

	cfg.Recurring = RecurringConfig{
		WorkerEnabled:     v.GetBool("recurring.worker_enabled"),
		PollInterval:      v.GetDuration("recurring.poll_interval"),
		TickTimeout:       v.GetDuration("recurring.tick_timeout"),
		CronSecret:        v.GetString("recurring.cron_secret"),
		ManualDedupeScope: v.GetString("recurring.manual_dedupe_scope"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Recurring.ManualDedupeScope {
	case ManualDedupeTimestamp, ManualDedupePeriod:
	default:
		return fmt.Errorf("config: recurring.manual_dedupe_scope must be %q or %q, got %q",
			ManualDedupeTimestamp, ManualDedupePeriod, c.Recurring.ManualDedupeScope)
	}
	if c.Documents.DefaultPaymentTermsDays < 0 {
		return fmt.Errorf("config: documents.default_payment_terms_days must be >= 0")
	}
	if c.Recurring.WorkerEnabled && c.Recurring.PollInterval <= 0 {
		return fmt.Errorf("config: recurring.poll_interval must be positive when the worker is enabled")
	}
	return nil
}
