package email

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
)

// Options tune the verification flow.
type Options struct {
	CodeTTL        time.Duration
	VerifiedTTL    time.Duration
	ResendCooldown time.Duration
	MaxAttempts    int
}

// DefaultOptions are used for zero fields.
var DefaultOptions = Options{
	CodeTTL:        5 * time.Minute,
	VerifiedTTL:    30 * time.Minute,
	ResendCooldown: time.Minute,
	MaxAttempts:    5,
}

var (
	errCooldown     = domain.NewAppError(domain.CodeTooManyRequests, "please wait before requesting another code", nil)
	errLocked       = domain.NewAppError(domain.CodeTooManyRequests, "too many failed attempts, request a new code", nil)
	errNoCode       = domain.NewAppError(domain.CodeValidation, "no verification code was sent to this email", nil)
	errExpired      = domain.NewAppError(domain.CodeValidation, "verification code expired", nil)
	errCodeMismatch = domain.NewAppError(domain.CodeValidation, "invalid verification code", nil)
	errSendFailed   = domain.NewAppError(domain.CodeInternal, "failed to send verification email", nil)
)

// SendResult describes a freshly issued code.
type SendResult struct {
	Email      string    `json:"email"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

// VerifyResult describes a confirmed email.
type VerifyResult struct {
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// Service issues and checks email verification codes. It also implements
// domain.VerificationGate for signup.
type Service struct {
	store   domain.VerificationStore
	mailer  Mailer
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	newCode func() (string, error)
}

var _ domain.VerificationGate = (*Service)(nil)

// NewService creates a Service.
func NewService(store domain.VerificationStore, mailer Mailer, opts Options, logger *slog.Logger) *Service {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultOptions.CodeTTL
	}
	if opts.VerifiedTTL <= 0 {
		opts.VerifiedTTL = DefaultOptions.VerifiedTTL
	}
	if opts.ResendCooldown < 0 {
		opts.ResendCooldown = 0
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions.MaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		mailer:  mailer,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		newCode: newCode,
	}
}

// Send issues a new code for address and mails it. Any previous code is
// replaced and the attempt counter reset.
func (s *Service) Send(ctx context.Context, address string) (*SendResult, error) {
	address, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}
	now := s.now()

	v, err := s.store.Get(ctx, address)
	switch {
	case domain.IsNotFound(err):
		v = &domain.EmailVerification{Email: address}
	case err != nil:
		return nil, err
	case now.Before(v.LastSentAt.Add(s.opts.ResendCooldown)):
		return nil, errCooldown
	}

	code, err := s.newCode()
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate code", err)
	}
	v.CodeHash = hashCode(code)
	v.ExpiresAt = now.Add(s.opts.CodeTTL)
	v.Attempts = 0
	v.LastSentAt = now
	v.VerifiedAt = nil
	if err := s.store.Save(ctx, v); err != nil {
		return nil, err
	}

	minutes := int(math.Ceil(s.opts.CodeTTL.Minutes()))
	err = s.mailer.Send(ctx, Message{
		To:      address,
		Subject: "Your Flying Pig verification code",
		Body:    fmt.Sprintf("Your verification code is %s.\nIt expires in %d minutes.", code, minutes),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "send verification email", slog.String("email", address), slog.Any("error", err))
		// Drop the record so the cooldown does not block a retry.
		if derr := s.store.Delete(ctx, address); derr != nil && !domain.IsNotFound(derr) {
			s.logger.WarnContext(ctx, "delete unsent verification", slog.String("email", address), slog.Any("error", derr))
		}
		return nil, errSendFailed
	}

	return &SendResult{
		Email:      address,
		ExpiresAt:  v.ExpiresAt,
		TTLSeconds: int(s.opts.CodeTTL / time.Second),
	}, nil
}

// Verify checks token against the code issued for address. The
// MaxAttempts-th wrong token locks the code until the next Send.
func (s *Service) Verify(ctx context.Context, address, token string) (*VerifyResult, error) {
	address, err := account.NormalizeEmail(address)
	if err != nil {
		return nil, err
	}
	now := s.now()

	v, err := s.store.Get(ctx, address)
	if domain.IsNotFound(err) {
		return nil, errNoCode
	}
	if err != nil {
		return nil, err
	}

	if v.Verified() {
		return &VerifyResult{Email: address, Verified: true}, nil
	}
	if v.Attempts >= s.opts.MaxAttempts {
		return nil, errLocked
	}
	if v.Expired(now) {
		return nil, errExpired
	}

	if !codeMatches(token, v.CodeHash) {
		v.Attempts++
		if err := s.store.Save(ctx, v); err != nil {
			return nil, err
		}
		if v.Attempts >= s.opts.MaxAttempts {
			return nil, errLocked
		}
		return nil, errCodeMismatch
	}

	v.VerifiedAt = &now
	if err := s.store.Save(ctx, v); err != nil {
		return nil, err
	}
	return &VerifyResult{Email: address, Verified: true}, nil
}

// IsVerified reports whether address was verified within the verified window.
func (s *Service) IsVerified(ctx context.Context, address string) (bool, error) {
	v, err := s.store.Get(ctx, address)
	if domain.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !v.Verified() {
		return false, nil
	}
	return s.now().Before(v.VerifiedAt.Add(s.opts.VerifiedTTL)), nil
}

// Consume forgets the verification of address so it cannot be reused.
func (s *Service) Consume(ctx context.Context, address string) error {
	err := s.store.Delete(ctx, address)
	if domain.IsNotFound(err) {
		return nil
	}
	return err
}
