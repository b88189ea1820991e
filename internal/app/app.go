package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/simp-lee/logger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/config"
	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/module/admin"
	"github.com/simp-lee/flyingpig/internal/module/auth"
	"github.com/simp-lee/flyingpig/internal/module/business"
	"github.com/simp-lee/flyingpig/internal/module/docs"
	"github.com/simp-lee/flyingpig/internal/module/email"
	"github.com/simp-lee/flyingpig/internal/module/freelancer"
	"github.com/simp-lee/flyingpig/internal/pkg"
	"github.com/simp-lee/flyingpig/internal/urls"
	"github.com/simp-lee/flyingpig/web"
)

const metricsNamespace = "flyingpig"

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	table   *urls.Table
	db      *gorm.DB
	redis   *redis.Client
	logger  *logger.Logger
	tracing config.ShutdownFunc
	cfg     *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	write := 60 * time.Second
	if timeout > 0 {
		// Leave room to write the response after the handler deadline.
		write = timeout + 5*time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// tracingOutput receives exported spans.
var tracingOutput = func() *os.File { return os.Stdout }

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("database is nil")
	}
	return db.AutoMigrate(
		&domain.BusinessUser{},
		&domain.FreelancerUser{},
		&domain.EmailVerification{},
	)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, tracing, the database and optional Redis, then the
// services, handlers, middleware, template rendering and URL configuration.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	a := &App{cfg: cfg}
	success := false
	defer func() {
		if !success {
			a.close(context.Background())
		}
	}()

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = log

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	// 2. Tracing.
	a.tracing, err = config.SetupTracing(&cfg.Tracing, tracingOutput())
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	// 3. Database, migrated in debug mode only.
	a.db, err = config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode {
		if err := Migrate(a.db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. Redis, only when a component uses it.
	if cfg.Email.Store == "redis" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.redis, err = config.SetupRedis(ctx, &cfg.Redis)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("setup redis: %w", err)
		}
	}

	// 5. Repository → service → handler.
	deps, err := a.buildRouteDeps(log.Logger)
	if err != nil {
		return nil, err
	}
	table, err := URLPatterns(&deps.RouteDeps)
	if err != nil {
		return nil, fmt.Errorf("url patterns: %w", err)
	}
	a.table = table

	// 6. Engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}
	timeout, _ := time.ParseDuration(cfg.Server.Timeout)
	metrics := middleware.NewMetrics(metricsNamespace)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		cors.New(corsConfig),
	)
	if cfg.Tracing.Enabled {
		engine.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	engine.Use(
		metrics.Middleware(),
		middleware.Timeout(timeout),
		middleware.Authenticate(deps.tokens),
	)

	// 7. Templates: live files in debug mode, embedded otherwise.
	var fsys fs.FS = web.EmbeddedFS
	if cfg.Server.Mode == gin.DebugMode {
		fsys, err = resolveDebugWebFS()
		if err != nil {
			return nil, fmt.Errorf("resolve debug template fs: %w", err)
		}
	}
	renderer, err := NewTemplateRenderer(fsys, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		return nil, fmt.Errorf("setup template renderer: %w", err)
	}
	engine.HTMLRender = renderer

	// 8. Routes.
	probes := Probes{DB: a.db, Metrics: metrics.Handler()}
	if a.redis != nil {
		probes.Redis = a.redis
	}
	if err := RegisterRoutes(engine, table, &deps.RouteDeps, probes); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}
	a.engine = engine

	success = true
	return a, nil
}

type wiring struct {
	RouteDeps
	tokens *pkg.TokenManager
}

func (a *App) buildRouteDeps(log *slog.Logger) (*wiring, error) {
	cfg := a.cfg

	var store domain.VerificationStore
	codeTTL, verifiedTTL, cooldown := cfg.Email.Durations()
	switch cfg.Email.Store {
	case "redis":
		store = email.NewRedisStore(a.redis, verifiedTTL)
	default:
		store = email.NewGormStore(a.db)
	}

	var mailer email.Mailer
	switch cfg.Email.Mailer {
	case "smtp":
		m, err := email.NewSMTPMailer(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username, cfg.Email.SMTP.Password, cfg.Email.From)
		if err != nil {
			return nil, fmt.Errorf("setup mailer: %w", err)
		}
		mailer = m
	default:
		mailer = email.NewLogMailer(log)
	}

	emailSvc := email.NewService(store, mailer, email.Options{
		CodeTTL:        codeTTL,
		VerifiedTTL:    verifiedTTL,
		ResendCooldown: cooldown,
		MaxAttempts:    cfg.Email.MaxAttempts,
	}, log)

	var gate domain.VerificationGate
	if cfg.Email.VerificationRequired() {
		gate = emailSvc
	}

	businessSvc := business.NewService(business.NewRepository(a.db), gate, log)
	freelancerSvc := freelancer.NewService(freelancer.NewRepository(a.db), gate, log)

	tokens := pkg.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())
	authSvc := auth.NewService(map[domain.UserType]domain.AccountStore{
		domain.UserTypeBusiness:   businessSvc.Store(),
		domain.UserTypeFreelancer: freelancerSvc.Store(),
	}, tokens, log)

	site := admin.NewSite()
	admin.Register(site, "business_users", "Business users", businessSvc)
	admin.Register(site, "freelancer_users", "Freelancer users", freelancerSvc)

	w := &wiring{
		RouteDeps: RouteDeps{
			Admin: site,
			Docs: docs.NewHandler(docs.Info{
				Title:       cfg.Docs.Title,
				Version:     cfg.Docs.Version,
				Description: cfg.Docs.Description,
			}),
			Auth:       auth.NewHandler(authSvc),
			Business:   business.NewHandler(businessSvc),
			Freelancer: freelancer.NewHandler(freelancerSvc),
			Email:      email.NewHandler(emailSvc),
		},
		tokens: tokens,
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		w.LoginLimit = middleware.NewRateLimiter(rl.RPS, rl.Burst).Middleware()
		w.SendLimit = middleware.NewRateLimiter(rl.RPS, rl.Burst).Middleware()
	}
	return w, nil
}

// resolveCORSConfig builds the gin-contrib/cors settings. Without an
// allowlist, debug mode allows every origin and release mode denies
// cross-origin requests. Credentials are only allowed for explicit origins.
func resolveCORSConfig(mode string, c config.CORSConfig) (cors.Config, error) {
	cc := cors.Config{
		AllowMethods:  c.AllowMethods,
		AllowHeaders:  c.AllowHeaders,
		ExposeHeaders: []string{"X-Request-ID"},
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	}
	if len(cc.AllowHeaders) == 0 {
		cc.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	}
	if c.MaxAge != "" {
		d, err := time.ParseDuration(c.MaxAge)
		if err != nil {
			return cors.Config{}, fmt.Errorf("invalid server.cors.max_age: %w", err)
		}
		cc.MaxAge = d
	}

	switch {
	case len(c.AllowOrigins) > 0:
		cc.AllowOrigins = c.AllowOrigins
		cc.AllowCredentials = c.AllowCredentials
	case mode == gin.ReleaseMode:
		cc.AllowOriginFunc = func(string) bool { return false }
	default:
		cc.AllowAllOrigins = true
	}
	return cc, cc.Validate()
}

func resolveDebugWebFS() (fs.FS, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		webDir := filepath.Clean(filepath.Join(filepath.Dir(file), "..", "..", "web"))
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	exePath, err := os.Executable()
	if err == nil {
		webDir := filepath.Join(filepath.Dir(exePath), "web")
		if stat, err := os.Stat(webDir); err == nil && stat.IsDir() {
			return os.DirFS(webDir), nil
		}
	}

	return nil, errors.New("debug web directory not found")
}

// Handler returns the configured engine.
func (a *App) Handler() http.Handler { return a.engine }

// Routes returns the root URL configuration.
func (a *App) Routes() *urls.Table { return a.table }

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and then releases the
// database, Redis, the tracer and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	timeout, _ := time.ParseDuration(a.cfg.Server.Timeout)
	srv := newHTTPServer(addr, a.engine, timeout)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if runErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.log().Info("server stopped")
	a.close(shutdownCtx)
	return runErr
}

// Close releases every resource held by a.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.close(ctx)
}

func (a *App) close(ctx context.Context) {
	if a.db != nil {
		if err := config.CloseDatabase(a.db); err != nil {
			a.log().Error("database close error", slog.Any("error", err))
		} else {
			a.log().Info("database connection closed")
		}
		a.db = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log().Error("redis close error", slog.Any("error", err))
		}
		a.redis = nil
	}
	if a.tracing != nil {
		if err := a.tracing(ctx); err != nil {
			a.log().Error("tracer shutdown error", slog.Any("error", err))
		}
		a.tracing = nil
	}
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
