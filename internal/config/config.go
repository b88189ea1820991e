package config

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Email    EmailConfig    `koanf:"email"`
	Redis    RedisConfig    `koanf:"redis"`
	Docs     DocsConfig     `koanf:"docs"`
	Tracing  TracingConfig  `koanf:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings for the login and
// verification code endpoints.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
	Issuer      string `koanf:"issuer"`
}

// TokenTTL returns the validated token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	d, _ := time.ParseDuration(a.TokenExpiry)
	return d
}

// EmailConfig holds the email verification settings.
type EmailConfig struct {
	Store           string     `koanf:"store"`
	Mailer          string     `koanf:"mailer"`
	From            string     `koanf:"from"`
	CodeTTL         string     `koanf:"code_ttl"`
	VerifiedTTL     string     `koanf:"verified_ttl"`
	ResendCooldown  string     `koanf:"resend_cooldown"`
	MaxAttempts     int        `koanf:"max_attempts"`
	RequireVerified *bool      `koanf:"require_verified"`
	SMTP            SMTPConfig `koanf:"smtp"`
}

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Durations returns the validated code lifetime, verified window and resend cooldown.
func (e EmailConfig) Durations() (codeTTL, verifiedTTL, cooldown time.Duration) {
	codeTTL, _ = time.ParseDuration(e.CodeTTL)
	verifiedTTL, _ = time.ParseDuration(e.VerifiedTTL)
	cooldown, _ = time.ParseDuration(e.ResendCooldown)
	return codeTTL, verifiedTTL, cooldown
}

// VerificationRequired reports whether signup needs a verified email.
// Unset means required.
func (e EmailConfig) VerificationRequired() bool {
	return e.RequireVerified == nil || *e.RequireVerified
}

// RedisConfig holds the Redis client settings. Redis is only dialed when a
// component is configured to use it.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// DocsConfig holds the API documentation metadata.
type DocsConfig struct {
	Title       string `koanf:"title"`
	Version     string `koanf:"version"`
	Description string `koanf:"description"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// Email defaults applied by Validate when the fields are unset.
const (
	defaultCodeTTL        = "5m"
	defaultVerifiedTTL    = "30m"
	defaultResendCooldown = "1m"
	defaultMaxAttempts    = 5
	defaultIssuer         = "flyingpig"
)

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__EMAIL__RESEND_COOLDOWN=30s overrides email.resend_cooldown.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, and
// normalizes whitespace and defaults in place.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLog,
		c.validateAuth,
		c.validateEmail,
		c.validateRedis,
		c.validateDocs,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := optionalDuration("server.timeout", &c.Server.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &c.Server.CORS.MaxAge); err != nil {
		return err
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}
	return optionalDuration("database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres
	host := strings.TrimSpace(pg.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	user := strings.TrimSpace(pg.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(pg.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	pg.Host = host
	pg.User = user
	pg.DBName = dbName
	pg.SSLMode = sslMode
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func (c *Config) validateAuth() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(secret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(secret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = secret

	if strings.TrimSpace(c.Auth.TokenExpiry) == "" {
		return fmt.Errorf("auth.token_expiry is required")
	}
	if err := optionalDuration("auth.token_expiry", &c.Auth.TokenExpiry); err != nil {
		return err
	}

	c.Auth.Issuer = strings.TrimSpace(c.Auth.Issuer)
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = defaultIssuer
	}
	return nil
}

func (c *Config) validateEmail() error {
	e := &c.Email

	e.Store = strings.ToLower(strings.TrimSpace(e.Store))
	switch e.Store {
	case "":
		e.Store = "database"
	case "database", "redis":
	default:
		return fmt.Errorf("invalid email.store %q: must be one of %q, %q", e.Store, "database", "redis")
	}

	e.Mailer = strings.ToLower(strings.TrimSpace(e.Mailer))
	switch e.Mailer {
	case "":
		e.Mailer = "log"
	case "log":
	case "smtp":
		e.SMTP.Host = strings.TrimSpace(e.SMTP.Host)
		if e.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required when mailer is smtp")
		}
		if e.SMTP.Port < 1 || e.SMTP.Port > 65535 {
			return fmt.Errorf("invalid email.smtp.port %d: must be between 1 and 65535", e.SMTP.Port)
		}
	default:
		return fmt.Errorf("invalid email.mailer %q: must be one of %q, %q", e.Mailer, "log", "smtp")
	}

	e.From = strings.TrimSpace(e.From)
	if e.From == "" {
		e.From = "no-reply@flyingpig.local"
	}
	if _, err := mail.ParseAddress(e.From); err != nil {
		return fmt.Errorf("invalid email.from %q: %w", e.From, err)
	}

	durations := []struct {
		name  string
		value *string
		def   string
	}{
		{"email.code_ttl", &e.CodeTTL, defaultCodeTTL},
		{"email.verified_ttl", &e.VerifiedTTL, defaultVerifiedTTL},
		{"email.resend_cooldown", &e.ResendCooldown, defaultResendCooldown},
	}
	for _, d := range durations {
		if strings.TrimSpace(*d.value) == "" {
			*d.value = d.def
		}
		if err := optionalDuration(d.name, d.value); err != nil {
			return err
		}
	}

	if e.MaxAttempts == 0 {
		e.MaxAttempts = defaultMaxAttempts
	}
	if e.MaxAttempts < 0 {
		return fmt.Errorf("invalid email.max_attempts %d: must be positive", e.MaxAttempts)
	}
	return nil
}

func (c *Config) validateRedis() error {
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Email.Store == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when email.store is redis")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d: must not be negative", c.Redis.DB)
	}
	return nil
}

func (c *Config) validateDocs() error {
	c.Docs.Title = strings.TrimSpace(c.Docs.Title)
	if c.Docs.Title == "" {
		c.Docs.Title = "Flying Pig API"
	}
	c.Docs.Version = strings.TrimSpace(c.Docs.Version)
	if c.Docs.Version == "" {
		c.Docs.Version = "v1"
	}
	c.Tracing.ServiceName = strings.TrimSpace(c.Tracing.ServiceName)
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "flyingpig"
	}
	return nil
}

// optionalDuration trims *v and, when non-empty, requires a positive Go duration.
func optionalDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, *v)
	}
	return nil
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}
	return classes
}
