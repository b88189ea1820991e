package freelancer

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

type Handler struct {
	*account.Handler[domain.FreelancerUser, *domain.FreelancerUser]
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Handler: account.NewHandler(svc)}
}

// SignUp handles POST freelancer_user/signup/.
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	user, err := h.Service().SignUp(c.Request.Context(), req.Input(), &domain.FreelancerUser{
		Headline: account.SanitizeText(req.Headline),
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, user)
}

// Update handles PATCH freelancer_user/<pk>/. An empty headline clears it.
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
	user, err := h.Service().Update(c.Request.Context(), p, id, req.Patch(), func(u *domain.FreelancerUser) {
		if req.Headline != nil {
			u.Headline = account.SanitizeText(*req.Headline)
		}
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}
