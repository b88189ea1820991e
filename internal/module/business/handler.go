package business

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// Handler serves the business user views.
type Handler struct {
	*account.Handler[domain.BusinessUser, *domain.BusinessUser]
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Handler: account.NewHandler(svc)}
}

// SignUp handles POST signup/.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	company := account.SanitizeText(req.Company)
	if company == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "company is required", nil))
		return
	}
	user, err := h.Service().SignUp(c.Request.Context(), req.Input(), &domain.BusinessUser{Company: company})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, user)
}

// Update handles PATCH on the user detail view.
func (h *Handler) Update(c *gin.Context) {
	p, ok := account.Principal(c)
	if !ok {
		return
	}
	id, err := pkg.ParamID(c, "pk")
	if err != nil {
		pkg.Error(c, domain.ErrNotFound)
		return
	}
	var req UpdateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	var company string
	if req.Company != nil {
		company = account.SanitizeText(*req.Company)
		if company == "" {
			pkg.Error(c, domain.NewAppError(domain.CodeValidation, "company must not be empty", nil))
			return
		}
	}
	user, err := h.Service().Update(c.Request.Context(), p, id, req.Patch(), func(u *domain.BusinessUser) {
		if req.Company != nil {
			u.Company = company
		}
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}
