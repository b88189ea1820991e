package email

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/pkg"
)

// Handler serves the verification views.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Send handles POST send/.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Send(c.Request.Context(), req.Email)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, res)
}

// Verify handles POST verify/.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Verify(c.Request.Context(), req.Email, req.Token)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, res)
}
