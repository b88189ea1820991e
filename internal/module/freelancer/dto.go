package freelancer

import "github.com/simp-lee/flyingpig/internal/module/account"

// SignUpRequest is the freelancer signup form.
type SignUpRequest struct {
	account.SignUpFields
	Headline string `json:"headline" binding:"max=200"`
}

// UpdateRequest is the body of PATCH on the user detail view.
type UpdateRequest struct {
	account.ProfileFields
	Headline *string `json:"headline" binding:"omitempty,max=200"`
}
