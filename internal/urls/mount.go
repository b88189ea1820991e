package urls

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const routeNameKey = "urls.route_name"

// RouteName returns the name of the route serving c, if any.
func RouteName(c *gin.Context) string {
	return c.GetString(routeNameKey)
}

// MountOption configures Mount.
type MountOption func(*mountConfig)

type mountConfig struct {
	notFound         gin.HandlerFunc
	methodNotAllowed gin.HandlerFunc
}

// WithNotFound sets the handler used when a parameter fails its converter
// and no other route serves the path.
func WithNotFound(h gin.HandlerFunc) MountOption {
	return func(c *mountConfig) { c.notFound = h }
}

// WithMethodNotAllowed sets the handler used when a parameter fails its
// converter but another route serves the path under a different method.
func WithMethodNotAllowed(h gin.HandlerFunc) MountOption {
	return func(c *mountConfig) { c.methodNotAllowed = h }
}

// Mount registers every route of t on r. Converters become gin parameters
// guarded by a check of the captured value. When two routes produce the
// same method and gin path, the first one is kept.
func (t *Table) Mount(r gin.IRouter, opts ...MountOption) (err error) {
	cfg := mountConfig{
		notFound:         func(c *gin.Context) { c.AbortWithStatus(http.StatusNotFound) },
		methodNotAllowed: func(c *gin.Context) { c.AbortWithStatus(http.StatusMethodNotAllowed) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	// gin reports conflicting wildcards by panicking.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("urls: mount: %v", rec)
		}
	}()

	seen := make(map[string]bool)
	for _, route := range t.routes {
		path, perr := route.Pattern.ginPath()
		if perr != nil {
			return perr
		}
		guard := t.guard(route, cfg)
		for _, ep := range route.View.Endpoints {
			key := ep.Method + " " + path
			if seen[key] {
				continue
			}
			seen[key] = true

			handlers := make([]gin.HandlerFunc, 0, len(ep.Handlers)+1)
			handlers = append(handlers, guard)
			handlers = append(handlers, ep.Handlers...)
			r.Handle(ep.Method, path, handlers...)
		}
	}
	return nil
}

// guard tags the context with the route name and rejects parameter values
// that fail their converter, falling back to Resolve to choose between 404
// and 405 the way an unmatched request would.
func (t *Table) guard(route Route, cfg mountConfig) gin.HandlerFunc {
	params := route.Pattern.Params()
	return func(c *gin.Context) {
		for _, p := range params {
			v := c.Param(p.Name)
			if p.Converter.Name == "path" {
				v = strings.TrimPrefix(v, "/")
			}
			if !p.Matches(v) {
				_, err := t.Resolve(c.Request.Method, c.Request.URL.Path)
				var mna *MethodNotAllowedError
				if errors.As(err, &mna) {
					c.Header("Allow", strings.Join(mna.Allowed, ", "))
					cfg.methodNotAllowed(c)
				} else {
					cfg.notFound(c)
				}
				c.Abort()
				return
			}
		}
		if route.Name != "" {
			c.Set(routeNameKey, route.Name)
		}
		c.Next()
	}
}

// Fallback returns a handler for the engine's NoRoute hook. Install it
// with RedirectTrailingSlash disabled: a path is redirected to its
// trailing-slash twin only when the table serves the twin for the request
// method. Everything else is answered from Resolve as a 405 with an Allow
// header or a 404.
func (t *Table) Fallback(opts ...MountOption) gin.HandlerFunc {
	cfg := mountConfig{
		notFound:         func(c *gin.Context) { c.AbortWithStatus(http.StatusNotFound) },
		methodNotAllowed: func(c *gin.Context) { c.AbortWithStatus(http.StatusMethodNotAllowed) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(c *gin.Context) {
		method, path := c.Request.Method, c.Request.URL.Path

		_, err := t.Resolve(method, path)
		var mna *MethodNotAllowedError
		if errors.As(err, &mna) {
			c.Header("Allow", strings.Join(mna.Allowed, ", "))
			cfg.methodNotAllowed(c)
			c.Abort()
			return
		}

		if twin, ok := toggleSlash(path); ok {
			if _, err := t.Resolve(method, twin); err == nil {
				redirectTo(c, twin)
				return
			}
		}
		cfg.notFound(c)
		c.Abort()
	}
}

func toggleSlash(path string) (string, bool) {
	if path == "" || path == "/" {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return path + "/", true
}

// redirectTo mirrors gin's trailing-slash redirect codes.
func redirectTo(c *gin.Context, path string) {
	code := http.StatusMovedPermanently
	if c.Request.Method != http.MethodGet {
		code = http.StatusTemporaryRedirect
	}
	if q := c.Request.URL.RawQuery; q != "" {
		path += "?" + q
	}
	c.Redirect(code, path)
	c.Abort()
}
