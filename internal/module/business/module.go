package business

import (
	"net/http"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/middleware"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/urls"
)

const tag = "business_users"

// Routes returns the business user URL configuration. The detail view is
// registered twice: bare under the include prefix and under business_user/.
// Both rows share the name business_user_detail; reversing it yields the
// business_user/ form.
func Routes(h *Handler) *urls.Table {
	if h == nil {
		panic("business.Routes: handler must not be nil")
	}
	auth := middleware.RequireAuth()

	detail := urls.NewView(tag,
		urls.Handle(http.MethodGet, auth, h.Get).
			Doc("Retrieve a business user").Returns(domain.BusinessUser{}).Secure(),
		urls.Handle(http.MethodPatch, auth, h.Update).
			Doc("Update a business user profile").Accepts(UpdateRequest{}).Returns(domain.BusinessUser{}).Secure(),
		urls.Handle(http.MethodDelete, auth, h.Deactivate).
			Doc("Deactivate a business user").Secure(),
	)
	changePassword := urls.NewView(tag,
		urls.Handle(http.MethodPost, auth, h.ChangePassword).
			Doc("Change the password").Accepts(account.ChangePasswordRequest{}).Secure(),
		urls.Handle(http.MethodPut, auth, h.ChangePassword).
			Doc("Change the password").Accepts(account.ChangePasswordRequest{}).Secure(),
	)

	return urls.NewTable(
		urls.Path("<int:pk>/", detail, "business_user_detail"),
		urls.Path("signup/", urls.NewView(tag,
			urls.Handle(http.MethodPost, h.SignUp).
				Doc("Sign up a business user").Accepts(SignUpRequest{}).Returns(domain.BusinessUser{}).Created(),
		), "signup"),
		urls.Path("business_user/<int:pk>/", detail, "business_user_detail"),
		urls.Path("business_user/<int:pk>/change_password/", changePassword, "business_user_change_password"),
		urls.Path("business_user/check_user_id/", urls.NewView(tag,
			urls.Handle(http.MethodGet, h.CheckUserID).
				Doc("Check whether a user id is available").Filters(account.CheckUserIDQuery{}).Returns(account.Availability{}),
		), "business_user_check_user_id"),
	)
}
