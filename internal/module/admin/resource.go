package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// resourceHandler serves the staff views of one user type.
type resourceHandler[T any, PT account.Model[T]] struct {
	svc *account.Service[T, PT]
}

func (h *resourceHandler[T, PT]) list(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

func (h *resourceHandler[T, PT]) get(c *gin.Context) {
	id, ok := pk(c)
	if !ok {
		return
	}
	user, err := h.svc.GetAny(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

func (h *resourceHandler[T, PT]) patch(c *gin.Context) {
	id, ok := pk(c)
	if !ok {
		return
	}
	var req FlagsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	if req.IsActive == nil && req.IsStaff == nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "nothing to update: set is_active or is_staff", nil))
		return
	}
	user, err := h.svc.SetFlags(c.Request.Context(), id, req.IsActive, req.IsStaff)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

func (h *resourceHandler[T, PT]) delete(c *gin.Context) {
	id, ok := pk(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

func pk(c *gin.Context) (uint, bool) {
	id, err := pkg.ParamID(c, "pk")
	if err != nil {
		pkg.Error(c, domain.ErrNotFound)
		return 0, false
	}
	return id, true
}
