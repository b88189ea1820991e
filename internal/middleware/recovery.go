package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the
// panic value with a stack trace and answers with the JSON envelope:
//
//	{"code": 500, "message": "internal error", "data": null}
//
// Nothing is written when the handler already sent headers.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.ErrorContext(c.Request.Context(), "panic recovered",
				slog.Any("panic", rec),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String("stack", string(debug.Stack())),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			pkg.Abort(c, domain.ErrInternal)
		}()
		c.Next()
	}
}
