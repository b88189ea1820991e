package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/pkg"
)

// renderError aborts with the JSON envelope.
func renderError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: message})
}

func notFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

func methodNotAllowedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}
