package email

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/urls"
)

// Routes returns the verification URL configuration. limit, when not nil,
// runs before the send view.
func Routes(h *Handler, limit gin.HandlerFunc) *urls.Table {
	if h == nil {
		panic("email.Routes: handler must not be nil")
	}
	send := []gin.HandlerFunc{h.Send}
	if limit != nil {
		send = []gin.HandlerFunc{limit, h.Send}
	}

	return urls.NewTable(
		urls.Path("send/", urls.NewView("freelancer_email",
			urls.Handle(http.MethodPost, send...).
				Doc("Send a 6-digit verification code").Accepts(SendRequest{}).Returns(SendResult{}),
		), "freelancer_email_send"),
		urls.Path("verify/", urls.NewView("freelancer_email",
			urls.Handle(http.MethodPost, h.Verify).
				Doc("Confirm a verification code").Accepts(VerifyRequest{}).Returns(VerifyResult{}),
		), "freelancer_email_verify"),
	)
}
