package business

import "github.com/simp-lee/flyingpig/internal/module/account"

// SignUpRequest is the business signup form.
type SignUpRequest struct {
	account.SignUpFields
	Company string `json:"company" binding:"required,max=200"`
}

// UpdateRequest is the body of PATCH on the user detail view.
type UpdateRequest struct {
	account.ProfileFields
	Company *string `json:"company" binding:"omitempty,min=1,max=200"`
}
