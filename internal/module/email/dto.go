package email

// SendRequest is the body of send/.
type SendRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// VerifyRequest is the body of verify/. Token is the 6-digit code.
type VerifyRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Token string `json:"token" binding:"required,len=6,numeric"`
}
