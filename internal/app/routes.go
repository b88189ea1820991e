package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/config"
	"github.com/simp-lee/flyingpig/internal/module/admin"
	"github.com/simp-lee/flyingpig/internal/module/auth"
	"github.com/simp-lee/flyingpig/internal/module/business"
	"github.com/simp-lee/flyingpig/internal/module/docs"
	"github.com/simp-lee/flyingpig/internal/module/email"
	"github.com/simp-lee/flyingpig/internal/module/freelancer"
	"github.com/simp-lee/flyingpig/internal/urls"
)

// RouteDeps holds the handlers the root URL configuration links to.
type RouteDeps struct {
	Admin      *admin.Site
	Docs       *docs.Handler
	Auth       *auth.AuthHandler
	Business   *business.Handler
	Freelancer *freelancer.Handler
	Email      *email.Handler

	// LoginLimit and SendLimit throttle login and code sending. Nil disables.
	LoginLimit gin.HandlerFunc
	SendLimit  gin.HandlerFunc
}

// URLPatterns returns the root URL configuration.
func URLPatterns(d *RouteDeps) (*urls.Table, error) {
	if d == nil {
		return nil, errors.New("route dependencies are nil")
	}
	if d.Admin == nil || d.Docs == nil || d.Auth == nil || d.Business == nil || d.Freelancer == nil || d.Email == nil {
		return nil, errors.New("every route handler is required")
	}

	schema := urls.NewView("schema",
		urls.Handle(http.MethodGet, d.Docs.Schema).Doc("OpenAPI schema, YAML unless JSON is requested"),
	)

	return urls.NewTable(
		urls.Include("admin/", d.Admin.Routes(), ""),
		urls.Path("docs/json/", urls.NewView("schema",
			urls.Handle(http.MethodGet, d.Docs.SchemaJSON).Doc("OpenAPI schema as JSON"),
		), docs.SchemaJSONName),
		urls.Path("schema/", schema, "schema"),
		urls.Path("schema/user/", schema, "user_schema"),
		urls.Path("schema/swagger-ui/", urls.NewView("schema",
			urls.Handle(http.MethodGet, d.Docs.SwaggerUI).Doc("Swagger UI"),
		), "swagger-ui"),
		urls.Path("schema/swagger-ui-dist/<path:asset>", urls.NewView("schema",
			urls.Handle(http.MethodGet, d.Docs.SwaggerUIDist).Doc("Swagger UI assets"),
		), docs.SwaggerUIDistName),
		urls.Path("schema/redoc/", urls.NewView("schema",
			urls.Handle(http.MethodGet, d.Docs.Redoc).Doc("ReDoc"),
		), "redoc"),
		urls.Include("api/v1/auth/", auth.Routes(d.Auth, d.LoginLimit), ""),
		urls.Include("api/", freelancer.Routes(d.Freelancer), ""),
		urls.Include("api/", business.Routes(d.Business), ""),
		urls.Include("api/v1/freelancer_user/email/", email.Routes(d.Email, d.SendLimit), "freelancer_email"),
	), nil
}

// Probes are the engine-level endpoints outside the URL configuration.
type Probes struct {
	DB      *gorm.DB
	Redis   redis.Cmdable
	Metrics http.Handler
}

// RegisterRoutes mounts table on r, adds the probes and installs the JSON
// 404 and 405 handlers. Views that reverse URLs are bound to table.
func RegisterRoutes(r *gin.Engine, table *urls.Table, deps *RouteDeps, probes Probes) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if table == nil || deps == nil {
		return errors.New("url table and route dependencies are required")
	}

	if err := deps.Docs.Load(table); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	deps.Admin.Bind(table)

	r.HandleMethodNotAllowed = true
	r.RedirectTrailingSlash = false
	r.GET("/health", healthHandler(probes.DB, probes.Redis))
	if probes.Metrics != nil {
		r.GET("/metrics", gin.WrapH(probes.Metrics))
	}

	guards := []urls.MountOption{
		urls.WithNotFound(notFoundHandler()),
		urls.WithMethodNotAllowed(methodNotAllowedHandler()),
	}
	if err := table.Mount(r, guards...); err != nil {
		return fmt.Errorf("mount routes: %w", err)
	}

	r.NoRoute(table.Fallback(guards...))
	r.NoMethod(methodNotAllowedHandler())
	return nil
}

// healthHandler pings the database and, when configured, Redis.
func healthHandler(db *gorm.DB, rdb redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		components := gin.H{}

		check := func(name string, err error) {
			if err != nil {
				components[name] = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
				return
			}
			components[name] = "ok"
		}

		if db == nil {
			check("database", errors.New("not configured"))
		} else {
			check("database", config.Ping(ctx, db))
		}
		if rdb != nil {
			check("redis", rdb.Ping(ctx).Err())
		}

		c.JSON(code, gin.H{
			"status":     status,
			"components": components,
		})
	}
}
