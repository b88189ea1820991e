package freelancer

import (
	"net/http"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/urls"
)

const tag = "freelancer_users"

// Routes returns the freelancer user URL configuration, rooted at
// freelancer_user/.
func Routes(h *Handler) *urls.Table {
	if h == nil {
		panic("freelancer.Routes: handler must not be nil")
	}
	auth := middleware.RequireAuth()

	return urls.NewTable(
		urls.Path("freelancer_user/signup/", urls.NewView(tag,
			urls.Handle(http.MethodPost, h.SignUp).
				Doc("Sign up a freelancer").Accepts(SignUpRequest{}).Returns(domain.FreelancerUser{}).Created(),
		), "freelancer_signup"),
		urls.Path("freelancer_user/check_user_id/", urls.NewView(tag,
			urls.Handle(http.MethodGet, h.CheckUserID).
				Doc("Check whether a user id is available").Filters(account.CheckUserIDQuery{}).Returns(account.Availability{}),
		), "freelancer_user_check_user_id"),
		urls.Path("freelancer_user/<int:pk>/", urls.NewView(tag,
			urls.Handle(http.MethodGet, auth, h.Get).
				Doc("Retrieve a freelancer").Returns(domain.FreelancerUser{}).Secure(),
			urls.Handle(http.MethodPatch, auth, h.Update).
				Doc("Update a freelancer profile").Accepts(UpdateRequest{}).Returns(domain.FreelancerUser{}).Secure(),
			urls.Handle(http.MethodDelete, auth, h.Deactivate).
				Doc("Deactivate a freelancer").Secure(),
		), "freelancer_user_detail"),
		urls.Path("freelancer_user/<int:pk>/change_password/", urls.NewView(tag,
			urls.Handle(http.MethodPost, auth, h.ChangePassword).
				Doc("Change the password").Accepts(account.ChangePasswordRequest{}).Secure(),
			urls.Handle(http.MethodPut, auth, h.ChangePassword).
				Doc("Change the password").Accepts(account.ChangePasswordRequest{}).Secure(),
		), "freelancer_user_change_password"),
	)
}
