package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/urls"
)

// Routes returns the auth URL configuration. limit, when not nil, runs
// before the login view.
// Panics if h is nil.
func Routes(h *AuthHandler, limit gin.HandlerFunc) *urls.Table {
	if h == nil {
		panic("auth.Routes: handler must not be nil")
	}
	login := []gin.HandlerFunc{h.Login}
	if limit != nil {
		login = []gin.HandlerFunc{limit, h.Login}
	}

	return urls.NewTable(
		urls.Path("login/", urls.NewView("auth",
			urls.Handle(http.MethodPost, login...).
				Doc("Obtain a bearer token").Accepts(LoginRequest{}).Returns(TokenResponse{}),
		), "login"),
	)
}
