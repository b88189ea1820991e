package domain

import (
	"context"
	"time"
)

// EmailVerification tracks the code most recently issued to an email address.
type EmailVerification struct {
	BaseModel
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CodeHash   string     `gorm:"size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
	LastSentAt time.Time  `gorm:"not null" json:"last_sent_at"`
	VerifiedAt *time.Time `json:"verified_at"`
}

// TableName pins the table name used by GORM.
func (EmailVerification) TableName() string { return "email_verifications" }

// Verified reports whether the code has been confirmed.
func (v *EmailVerification) Verified() bool {
	return v != nil && v.VerifiedAt != nil
}

// Expired reports whether the code can no longer be confirmed at now.
func (v *EmailVerification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}

// VerificationStore persists email verifications keyed by normalized email.
type VerificationStore interface {
	Get(ctx context.Context, email string) (*EmailVerification, error)
	Save(ctx context.Context, v *EmailVerification) error
	Delete(ctx context.Context, email string) error
}

// VerificationGate is what signup needs from the email verification flow.
type VerificationGate interface {
	IsVerified(ctx context.Context, email string) (bool, error)
	Consume(ctx context.Context, email string) error
}
