package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "abcdefghijklmnopqrstuvwxyz0123456789"

const testYAML = `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
  rate_limit:
    enabled: true
    rps: 2
    burst: 5
database:
  driver: "postgres"
  sqlite:
    path: "data/test.db"
  postgres:
    host: "db.example.com"
    port: 5433
    user: "admin"
    password: "secret"
    dbname: "testdb"
    sslmode: "require"
  pool:
    max_idle_conns: 5
    max_open_conns: 50
    conn_max_lifetime: "30m"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "Abcdefghijklmnopqrstuvwxyz0123456789"
  token_expiry: "12h"
  issuer: "flyingpig-test"
email:
  store: "redis"
  mailer: "smtp"
  from: "Flying Pig <no-reply@example.com>"
  code_ttl: "10m"
  verified_ttl: "1h"
  resend_cooldown: "30s"
  max_attempts: 3
  require_verified: false
  smtp:
    host: "smtp.example.com"
    port: 587
    username: "mailer"
    password: "mailpass"
redis:
  addr: "localhost:6379"
  db: 2
docs:
  title: "Accounts API"
  version: "2.0"
tracing:
  enabled: true
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// validBaseYAML returns a minimal valid YAML config string (sqlite, debug mode).
func validBaseYAML(extras string) string {
	return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "debug"
database:
  driver: "sqlite"
  sqlite:
    path: "data/test.db"
log:
  level: "info"
  format: "json"
auth:
  jwt_secret: "` + testSecret + `"
  token_expiry: "24h"
` + extras
}

func TestLoad_FullYAML(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 3000 || cfg.Server.Mode != "release" {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.RPS != 2 || cfg.Server.RateLimit.Burst != 5 {
		t.Errorf("unexpected rate limit: %+v", cfg.Server.RateLimit)
	}
	if cfg.Database.Postgres.Host != "db.example.com" || cfg.Database.Postgres.Port != 5433 {
		t.Errorf("unexpected postgres config: %+v", cfg.Database.Postgres)
	}
	if cfg.Database.Pool.ConnMaxLifetime != "30m" {
		t.Errorf("Pool.ConnMaxLifetime = %q, want %q", cfg.Database.Pool.ConnMaxLifetime, "30m")
	}
	if cfg.Auth.TokenTTL() != 12*time.Hour {
		t.Errorf("Auth.TokenTTL() = %v, want 12h", cfg.Auth.TokenTTL())
	}
	if cfg.Auth.Issuer != "flyingpig-test" {
		t.Errorf("Auth.Issuer = %q", cfg.Auth.Issuer)
	}

	codeTTL, verifiedTTL, cooldown := cfg.Email.Durations()
	if codeTTL != 10*time.Minute || verifiedTTL != time.Hour || cooldown != 30*time.Second {
		t.Errorf("Email durations = %v %v %v", codeTTL, verifiedTTL, cooldown)
	}
	if cfg.Email.Store != "redis" || cfg.Email.Mailer != "smtp" || cfg.Email.MaxAttempts != 3 {
		t.Errorf("unexpected email config: %+v", cfg.Email)
	}
	if cfg.Email.VerificationRequired() {
		t.Error("expected require_verified=false to be honored")
	}
	if cfg.Email.SMTP.Host != "smtp.example.com" || cfg.Email.SMTP.Port != 587 {
		t.Errorf("unexpected smtp config: %+v", cfg.Email.SMTP)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Docs.Title != "Accounts API" || cfg.Docs.Version != "2.0" {
		t.Errorf("unexpected docs config: %+v", cfg.Docs)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.ServiceName != "flyingpig" {
		t.Errorf("unexpected tracing config: %+v", cfg.Tracing)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__DATABASE__DRIVER", "sqlite")
	t.Setenv("APP__LOG__LEVEL", "error")
	t.Setenv("APP__DATABASE__POOL__MAX_IDLE_CONNS", "20")
	t.Setenv("APP__EMAIL__RESEND_COOLDOWN", "45s")
	t.Setenv("APP__REDIS__ADDR", "cache:6380")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.Database.Pool.MaxIdleConns != 20 {
		t.Errorf("Pool.MaxIdleConns = %d, want 20", cfg.Database.Pool.MaxIdleConns)
	}
	if cfg.Email.ResendCooldown != "45s" {
		t.Errorf("Email.ResendCooldown = %q, want 45s", cfg.Email.ResendCooldown)
	}
	if cfg.Redis.Addr != "cache:6380" {
		t.Errorf("Redis.Addr = %q, want cache:6380", cfg.Redis.Addr)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validBaseYAML("")))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	codeTTL, verifiedTTL, cooldown := cfg.Email.Durations()
	if codeTTL != 5*time.Minute || verifiedTTL != 30*time.Minute || cooldown != time.Minute {
		t.Errorf("default email durations = %v %v %v", codeTTL, verifiedTTL, cooldown)
	}
	if cfg.Email.Store != "database" || cfg.Email.Mailer != "log" {
		t.Errorf("default store/mailer = %q/%q", cfg.Email.Store, cfg.Email.Mailer)
	}
	if cfg.Email.MaxAttempts != 5 {
		t.Errorf("default max_attempts = %d, want 5", cfg.Email.MaxAttempts)
	}
	if !cfg.Email.VerificationRequired() {
		t.Error("verification should be required by default")
	}
	if cfg.Auth.Issuer != "flyingpig" {
		t.Errorf("default issuer = %q", cfg.Auth.Issuer)
	}
	if cfg.Docs.Title != "Flying Pig API" || cfg.Docs.Version != "v1" {
		t.Errorf("default docs = %+v", cfg.Docs)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should be disabled by default")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "server mode",
			yaml:    strings.Replace(validBaseYAML(""), `mode: "debug"`, `mode: "production"`, 1),
			wantErr: "server.mode",
		},
		{
			name:    "server port zero",
			yaml:    strings.Replace(validBaseYAML(""), "port: 3000", "port: 0", 1),
			wantErr: "server.port",
		},
		{
			name:    "server port too large",
			yaml:    strings.Replace(validBaseYAML(""), "port: 3000", "port: 70000", 1),
			wantErr: "server.port",
		},
		{
			name:    "server host blank",
			yaml:    strings.Replace(validBaseYAML(""), `host: "127.0.0.1"`, `host: "   "`, 1),
			wantErr: "server.host",
		},
		{
			name:    "database driver",
			yaml:    strings.Replace(validBaseYAML(""), `driver: "sqlite"`, `driver: "mysql"`, 1),
			wantErr: "database.driver",
		},
		{
			name:    "sqlite path",
			yaml:    strings.Replace(validBaseYAML(""), `path: "data/test.db"`, `path: " "`, 1),
			wantErr: "database.sqlite.path",
		},
		{
			name:    "log level",
			yaml:    strings.Replace(validBaseYAML(""), `level: "info"`, `level: "verbose"`, 1),
			wantErr: "log.level",
		},
		{
			name:    "log format",
			yaml:    strings.Replace(validBaseYAML(""), `format: "json"`, `format: "xml"`, 1),
			wantErr: "log.format",
		},
		{
			name:    "timeout",
			yaml:    strings.Replace(validBaseYAML(""), `mode: "debug"`, "mode: \"debug\"\n  timeout: \"-5s\"", 1),
			wantErr: "server.timeout",
		},
		{
			name:    "cors max age",
			yaml:    strings.Replace(validBaseYAML(""), `mode: "debug"`, "mode: \"debug\"\n  cors:\n    max_age: \"soon\"", 1),
			wantErr: "server.cors.max_age",
		},
		{
			name:    "rate limit rps",
			yaml:    strings.Replace(validBaseYAML(""), `mode: "debug"`, "mode: \"debug\"\n  rate_limit:\n    enabled: true\n    rps: 0\n    burst: 1", 1),
			wantErr: "server.rate_limit.rps",
		},
		{
			name:    "rate limit burst",
			yaml:    strings.Replace(validBaseYAML(""), `mode: "debug"`, "mode: \"debug\"\n  rate_limit:\n    enabled: true\n    rps: 1\n    burst: 0", 1),
			wantErr: "server.rate_limit.burst",
		},
		{
			name:    "jwt secret missing",
			yaml:    strings.Replace(validBaseYAML(""), testSecret, "", 1),
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "jwt secret short",
			yaml:    strings.Replace(validBaseYAML(""), testSecret, "short", 1),
			wantErr: "auth.jwt_secret",
		},
		{
			name:    "token expiry missing",
			yaml:    strings.Replace(validBaseYAML(""), `token_expiry: "24h"`, `token_expiry: ""`, 1),
			wantErr: "auth.token_expiry",
		},
		{
			name:    "token expiry negative",
			yaml:    strings.Replace(validBaseYAML(""), `token_expiry: "24h"`, `token_expiry: "-1h"`, 1),
			wantErr: "auth.token_expiry",
		},
		{
			name:    "email store",
			yaml:    validBaseYAML("email:\n  store: \"memcached\"\n"),
			wantErr: "email.store",
		},
		{
			name:    "email mailer",
			yaml:    validBaseYAML("email:\n  mailer: \"carrier-pigeon\"\n"),
			wantErr: "email.mailer",
		},
		{
			name:    "smtp host",
			yaml:    validBaseYAML("email:\n  mailer: \"smtp\"\n  smtp:\n    port: 25\n"),
			wantErr: "email.smtp.host",
		},
		{
			name:    "smtp port",
			yaml:    validBaseYAML("email:\n  mailer: \"smtp\"\n  smtp:\n    host: \"mx\"\n"),
			wantErr: "email.smtp.port",
		},
		{
			name:    "email from",
			yaml:    validBaseYAML("email:\n  from: \"not an address\"\n"),
			wantErr: "email.from",
		},
		{
			name:    "code ttl",
			yaml:    validBaseYAML("email:\n  code_ttl: \"five minutes\"\n"),
			wantErr: "email.code_ttl",
		},
		{
			name:    "max attempts",
			yaml:    validBaseYAML("email:\n  max_attempts: -1\n"),
			wantErr: "email.max_attempts",
		},
		{
			name:    "redis addr required by redis store",
			yaml:    validBaseYAML("email:\n  store: \"redis\"\n"),
			wantErr: "redis.addr",
		},
		{
			name:    "redis db",
			yaml:    validBaseYAML("redis:\n  db: -1\n"),
			wantErr: "redis.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTestConfig(t, tt.yaml))
			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_PostgresValidation(t *testing.T) {
	base := func(mode, pg string) string {
		return strings.Replace(strings.Replace(validBaseYAML(""), `mode: "debug"`, `mode: "`+mode+`"`, 1),
			"database:\n  driver: \"sqlite\"\n  sqlite:\n    path: \"data/test.db\"\n",
			"database:\n  driver: \"postgres\"\n  postgres:\n"+pg, 1)
	}
	full := "    host: \"db\"\n    port: 5432\n    user: \"u\"\n    dbname: \"d\"\n    sslmode: \"%s\"\n"

	tests := []struct {
		name    string
		mode    string
		pg      string
		wantErr string
	}{
		{"missing host", "debug", "    port: 5432\n    user: \"u\"\n    dbname: \"d\"\n    sslmode: \"disable\"\n", "database.postgres.host"},
		{"bad port", "debug", "    host: \"db\"\n    port: 0\n    user: \"u\"\n    dbname: \"d\"\n    sslmode: \"disable\"\n", "database.postgres.port"},
		{"missing user", "debug", "    host: \"db\"\n    port: 5432\n    dbname: \"d\"\n    sslmode: \"disable\"\n", "database.postgres.user"},
		{"missing dbname", "debug", "    host: \"db\"\n    port: 5432\n    user: \"u\"\n    sslmode: \"disable\"\n", "database.postgres.dbname"},
		{"bad sslmode", "debug", strings.Replace(full, "%s", "sometimes", 1), "database.postgres.sslmode"},
		{"disable in release", "release", strings.Replace(full, "%s", "disable", 1), "database.postgres.sslmode"},
		{"disable in debug", "debug", strings.Replace(full, "%s", "disable", 1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := base(tt.mode, tt.pg)
			if tt.mode == "release" {
				yaml = strings.Replace(yaml, testSecret, "Abcdefghijklmnopqrstuvwxyz0123456789", 1)
			}
			_, err := Load(writeTestConfig(t, yaml))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Load() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ReleaseSecretClasses(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `mode: "debug"`, `mode: "release"`, 1)

	_, err := Load(writeTestConfig(t, yaml))
	if err == nil || !strings.Contains(err.Error(), "character classes") {
		t.Fatalf("expected character class error in release mode, got %v", err)
	}

	yaml = strings.Replace(yaml, testSecret, "Abcdefghijklmnopqrstuvwxyz0123456789", 1)
	if _, err := Load(writeTestConfig(t, yaml)); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
}

func TestLoad_WhitespaceDurationsAreUnset(t *testing.T) {
	yaml := strings.Replace(validBaseYAML(""), `mode: "debug"`, "mode: \"debug\"\n  timeout: \"   \"", 1)

	cfg, err := Load(writeTestConfig(t, yaml))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Timeout != "" {
		t.Errorf("Server.Timeout = %q, want empty", cfg.Server.Timeout)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yaml")
	if err != nil {
		t.Fatalf("Load() error on project config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Email.Store != "database" || cfg.Email.Mailer != "log" {
		t.Errorf("Email store/mailer = %q/%q, want database/log", cfg.Email.Store, cfg.Email.Mailer)
	}
	if cfg.Auth.TokenExpiry != "24h" {
		t.Errorf("Auth.TokenExpiry = %q, want 24h", cfg.Auth.TokenExpiry)
	}
}

func TestCountSecretClasses(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{name: "empty string", secret: "", want: 0},
		{name: "lowercase only", secret: "abcdef", want: 1},
		{name: "digits only", secret: "123456", want: 1},
		{name: "lower and upper", secret: "abcDEF", want: 2},
		{name: "lower upper digit", secret: "abcDEF123", want: 3},
		{name: "all four classes", secret: "abcDEF123!", want: 4},
		{name: "space counts as symbol", secret: "aA1 ", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountSecretClasses(tt.secret); got != tt.want {
				t.Errorf("CountSecretClasses(%q) = %d, want %d", tt.secret, got, tt.want)
			}
		})
	}
}
