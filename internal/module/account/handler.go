package account

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// Handler serves the views that behave the same for every user type. The
// routes using it are expected to run behind middleware.RequireAuth where a
// principal is needed.
type Handler[T any, PT Model[T]] struct {
	svc *Service[T, PT]
}

// NewHandler creates a Handler.
func NewHandler[T any, PT Model[T]](svc *Service[T, PT]) *Handler[T, PT] {
	return &Handler[T, PT]{svc: svc}
}

// Service returns the service behind h.
func (h *Handler[T, PT]) Service() *Service[T, PT] {
	return h.svc
}

// Get handles GET <pk>/.
func (h *Handler[T, PT]) Get(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	user, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// Deactivate handles DELETE <pk>/.
func (h *Handler[T, PT]) Deactivate(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), p, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// ChangePassword handles POST and PUT <pk>/change_password/.
func (h *Handler[T, PT]) ChangePassword(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	err := h.svc.ChangePassword(c.Request.Context(), p, id, ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, gin.H{"changed": true})
}

// CheckUserID handles GET check_user_id/?user_id=.
func (h *Handler[T, PT]) CheckUserID(c *gin.Context) {
	var q CheckUserIDQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	res, err := h.svc.CheckUserID(c.Request.Context(), q.UserID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, res)
}

// Principal returns the caller, writing 401 when there is none.
func Principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, "authentication required", nil))
	}
	return p, ok
}

func principalAndID(c *gin.Context) (domain.Principal, uint, bool) {
	p, ok := Principal(c)
	if !ok {
		return p, 0, false
	}
	id, err := pkg.ParamID(c, "pk")
	if err != nil {
		pkg.Error(c, domain.ErrNotFound)
		return p, 0, false
	}
	return p, id, true
}
