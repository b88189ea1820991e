package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

const principalContextKey = "auth.principal"

var errAuthRequired = domain.NewAppError(domain.CodeUnauthorized, "authentication required", nil)

// TokenParser turns a bearer token into the principal it was issued for.
type TokenParser interface {
	Parse(token string) (domain.Principal, error)
}

// Authenticate reads an "Authorization: Bearer <token>" header and stores
// the resulting principal in the context. Requests without the header pass
// through anonymously; a malformed or rejected token is answered with 401.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			pkg.Abort(c, domain.NewAppError(domain.CodeUnauthorized, "invalid authorization header", nil))
			return
		}

		p, err := tokens.Parse(token)
		if err != nil {
			pkg.Abort(c, err)
			return
		}
		c.Set(principalContextKey, p)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			pkg.Abort(c, errAuthRequired)
			return
		}
		c.Next()
	}
}

// RequireStaff rejects anonymous requests with 401 and non-staff
// principals with 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			pkg.Abort(c, errAuthRequired)
			return
		}
		if !p.Staff {
			pkg.Abort(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal stored by Authenticate.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// SetPrincipal stores p as the authenticated principal of c.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalContextKey, p)
}
