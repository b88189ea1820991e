package account

// SignUpFields are the signup form fields shared by every user type. User
// type specific requests embed it.
type SignUpFields struct {
	UserID          string `json:"user_id" binding:"required,userid"`
	Password        string `json:"password" binding:"required,strongpassword"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	FirstName       string `json:"first_name" binding:"required,max=100"`
	LastName        string `json:"last_name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Mobile          string `json:"mobile" binding:"omitempty,mobile"`
	Country         string `json:"country" binding:"omitempty,country"`
	Language        string `json:"language" binding:"omitempty,language"`
	AgreeToTerms    bool   `json:"agree_to_terms" binding:"required"`
}

// Input converts the form to a SignUpInput.
func (f SignUpFields) Input() SignUpInput {
	return SignUpInput{
		UserID:          f.UserID,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		Email:           f.Email,
		AgreeToTerms:    f.AgreeToTerms,
		Profile: Profile{
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Mobile:    f.Mobile,
			Country:   f.Country,
			Language:  f.Language,
		},
	}
}

// ProfileFields are the PATCH fields shared by every user type.
type ProfileFields struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Mobile    *string `json:"mobile" binding:"omitempty,mobile"`
	Country   *string `json:"country" binding:"omitempty,country"`
	Language  *string `json:"language" binding:"omitempty,language"`
}

// Patch converts the form to a ProfilePatch.
func (f ProfileFields) Patch() ProfilePatch {
	return ProfilePatch{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Mobile:    f.Mobile,
		Country:   f.Country,
		Language:  f.Language,
	}
}

// ChangePasswordRequest is the body of the change_password view.
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// CheckUserIDQuery is the query of the check_user_id view.
type CheckUserIDQuery struct {
	UserID string `form:"user_id" binding:"required"`
}
