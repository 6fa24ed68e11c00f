// Package config loads service configuration from defaults, an optional YAML
// file named by MANDATE_CONFIG_FILE, and MANDATE_* environment variables, in
// that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mandate/internal/mandate/refnum"
)

const (
	// DevJWTSigningKey is only accepted outside production.
	DevJWTSigningKey = "dev-secret-key-change-in-production"
	// DevDocumentSigningKey is only accepted outside production.
	DevDocumentSigningKey = "dev-document-key-change-in-production"
)

// Config is the full service configuration.
type Config struct {
	Environment string          `yaml:"environment"`
	Server      Server          `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Database    DatabaseConfig  `yaml:"database"`
	Redis       RedisConfig     `yaml:"redis"`
	Kafka       KafkaConfig     `yaml:"kafka"`
	Auth        AuthConfig      `yaml:"auth"`
	Documents   DocumentsConfig `yaml:"documents"`
	Bootstrap   BootstrapConfig `yaml:"bootstrap"`
	Mandate     MandateConfig   `yaml:"mandate"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig is empty-URL tolerant: without a URL the service runs on
// in-memory stores.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type KafkaConfig struct {
	Brokers            []string      `yaml:"brokers"`
	ClientID           string        `yaml:"client_id"`
	NotificationsTopic string        `yaml:"notifications_topic"`
	AuditTopic         string        `yaml:"audit_topic"`
	Partitions         int32         `yaml:"partitions"`
	ReplicationFactor  int16         `yaml:"replication_factor"`
	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type AuthConfig struct {
	JWTSigningKey  string        `yaml:"jwt_signing_key"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
}

type DocumentsConfig struct {
	VerificationBaseURL string        `yaml:"verification_base_url"`
	SigningKey          string        `yaml:"signing_key"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	Issuer              string        `yaml:"issuer"`
}

type BootstrapConfig struct {
	SuperAdminEmail    string `yaml:"super_admin_email"`
	SuperAdminPassword string `yaml:"super_admin_password"`
}

type MandateConfig struct {
	ReferencePrefix  string `yaml:"reference_prefix"`
	AutoIssuePdf     bool   `yaml:"auto_issue_pdf"`
	ReferenceRetries int    `yaml:"reference_retries"`
}

// RateLimitConfig caps requests per client IP over Window.
type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Window         time.Duration `yaml:"window"`
	PublicRequests int           `yaml:"public_requests"`
	LoginAttempts  int           `yaml:"login_attempts"`
}

// IsProduction reports whether dev fallbacks must be refused.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Environment: "development",
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Database: DatabaseConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			ClientID:           "mandate-service",
			NotificationsTopic: "mandate.notifications",
			AuditTopic:         "mandate.audit",
			Partitions:         3,
			ReplicationFactor:  1,
			OutboxPollInterval: 2 * time.Second,
			OutboxBatchSize:    100,
		},
		Auth: AuthConfig{
			JWTSigningKey:  DevJWTSigningKey,
			JWTIssuer:      "mandate-service",
			AccessTokenTTL: 8 * time.Hour,
			BcryptCost:     12,
		},
		Documents: DocumentsConfig{
			VerificationBaseURL: "http://localhost:8080/api/public/verify",
			SigningKey:          DevDocumentSigningKey,
			CacheTTL:            24 * time.Hour,
			Issuer:              "Mandate Office",
		},
		Mandate: MandateConfig{
			ReferencePrefix:  "MDT",
			AutoIssuePdf:     true,
			ReferenceRetries: 3,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			Window:         time.Minute,
			PublicRequests: 60,
			LoginAttempts:  10,
		},
	}
}

// Load builds the configuration and validates it.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("MANDATE_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("MANDATE_ENV", &c.Environment)
	e.str("MANDATE_ADDR", &c.Server.Addr)
	e.duration("MANDATE_READ_TIMEOUT", &c.Server.ReadTimeout)
	e.duration("MANDATE_WRITE_TIMEOUT", &c.Server.WriteTimeout)
	e.duration("MANDATE_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	e.list("MANDATE_ALLOWED_ORIGINS", &c.Server.AllowedOrigins)

	e.str("MANDATE_LOG_LEVEL", &c.Log.Level)
	e.str("MANDATE_LOG_FORMAT", &c.Log.Format)

	e.str("MANDATE_DATABASE_URL", &c.Database.URL)
	e.integer("MANDATE_DATABASE_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	e.integer("MANDATE_DATABASE_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	e.boolean("MANDATE_DATABASE_AUTO_MIGRATE", &c.Database.AutoMigrate)

	e.str("MANDATE_REDIS_URL", &c.Redis.URL)
	e.integer("MANDATE_REDIS_POOL_SIZE", &c.Redis.PoolSize)

	e.list("MANDATE_KAFKA_BROKERS", &c.Kafka.Brokers)
	e.str("MANDATE_KAFKA_CLIENT_ID", &c.Kafka.ClientID)
	e.str("MANDATE_KAFKA_NOTIFICATIONS_TOPIC", &c.Kafka.NotificationsTopic)
	e.str("MANDATE_KAFKA_AUDIT_TOPIC", &c.Kafka.AuditTopic)
	e.duration("MANDATE_OUTBOX_POLL_INTERVAL", &c.Kafka.OutboxPollInterval)

	e.str("MANDATE_JWT_SIGNING_KEY", &c.Auth.JWTSigningKey)
	e.str("MANDATE_JWT_ISSUER", &c.Auth.JWTIssuer)
	e.duration("MANDATE_ACCESS_TOKEN_TTL", &c.Auth.AccessTokenTTL)
	e.integer("MANDATE_BCRYPT_COST", &c.Auth.BcryptCost)

	e.str("MANDATE_VERIFICATION_BASE_URL", &c.Documents.VerificationBaseURL)
	e.str("MANDATE_DOCUMENT_SIGNING_KEY", &c.Documents.SigningKey)
	e.duration("MANDATE_DOCUMENT_CACHE_TTL", &c.Documents.CacheTTL)
	e.str("MANDATE_DOCUMENT_ISSUER", &c.Documents.Issuer)

	e.str("MANDATE_BOOTSTRAP_EMAIL", &c.Bootstrap.SuperAdminEmail)
	e.str("MANDATE_BOOTSTRAP_PASSWORD", &c.Bootstrap.SuperAdminPassword)

	e.str("MANDATE_REFERENCE_PREFIX", &c.Mandate.ReferencePrefix)
	e.boolean("MANDATE_AUTO_ISSUE_PDF", &c.Mandate.AutoIssuePdf)
	e.integer("MANDATE_REFERENCE_RETRIES", &c.Mandate.ReferenceRetries)

	e.boolean("MANDATE_RATE_LIMIT_ENABLED", &c.RateLimit.Enabled)
	e.duration("MANDATE_RATE_LIMIT_WINDOW", &c.RateLimit.Window)
	e.integer("MANDATE_RATE_LIMIT_PUBLIC_REQUESTS", &c.RateLimit.PublicRequests)
	e.integer("MANDATE_RATE_LIMIT_LOGIN_ATTEMPTS", &c.RateLimit.LoginAttempts)

	return e.err()
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Auth.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token ttl must be positive"))
	}
	if c.Mandate.ReferenceRetries < 1 {
		errs = append(errs, errors.New("reference retries must be at least 1"))
	}
	if !refnum.ValidPrefix(c.Mandate.ReferencePrefix) {
		errs = append(errs, fmt.Errorf("reference prefix %q must be 2 to 8 letters", c.Mandate.ReferencePrefix))
	}
	if c.Documents.VerificationBaseURL == "" {
		errs = append(errs, errors.New("verification base url is required"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Window <= 0 || c.RateLimit.PublicRequests < 1 || c.RateLimit.LoginAttempts < 1) {
		errs = append(errs, errors.New("rate limit window and limits must be positive when enabled"))
	}
	if c.IsProduction() {
		if c.Auth.JWTSigningKey == DevJWTSigningKey || len(c.Auth.JWTSigningKey) < 32 {
			errs = append(errs, errors.New("MANDATE_JWT_SIGNING_KEY must be set to at least 32 bytes in production"))
		}
		if c.Documents.SigningKey == DevDocumentSigningKey || len(c.Documents.SigningKey) < 32 {
			errs = append(errs, errors.New("MANDATE_DOCUMENT_SIGNING_KEY must be set to at least 32 bytes in production"))
		}
		if c.Database.URL == "" {
			errs = append(errs, errors.New("MANDATE_DATABASE_URL is required in production"))
		}
	}
	return errors.Join(errs...)
}

type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}
