package auth

import (
	"time"

	"github.com/simp-lee/flyingpig/internal/domain"
)

// LoginRequest represents the input for login.
type LoginRequest struct {
	UserType domain.UserType `json:"user_type" binding:"required,oneof=business freelancer"`
	UserID   string          `json:"user_id" binding:"required,max=30"`
	Password string          `json:"password" binding:"required,max=72"`
}

// TokenResponse represents the access token returned after login.
type TokenResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	UserType  domain.UserType `json:"user_type"`
	UserID    string          `json:"user_id"`
}
