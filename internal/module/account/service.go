package account

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// SignUpInput carries the fields common to every signup form.
type SignUpInput struct {
	UserID          string
	Password        string
	ConfirmPassword string
	Email           string
	AgreeToTerms    bool
	Profile         Profile
}

// ChangePasswordInput carries a password change request.
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// Availability answers a user id availability check.
type Availability struct {
	UserID    string `json:"user_id"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Service implements the account use cases for one user type.
type Service[T any, PT Model[T]] struct {
	repo     domain.UserRepository[T]
	userType domain.UserType
	gate     domain.VerificationGate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service. When gate is nil, signup does not require a
// verified email.
func NewService[T any, PT Model[T]](repo domain.UserRepository[T], userType domain.UserType, gate domain.VerificationGate, logger *slog.Logger) *Service[T, PT] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service[T, PT]{
		repo:     repo,
		userType: userType,
		gate:     gate,
		logger:   logger,
		now:      time.Now,
	}
}

// UserType returns the user type served by s.
func (s *Service[T, PT]) UserType() domain.UserType {
	return s.userType
}

// SignUp validates in, fills the account part of user and persists it.
// Type-specific fields must already be set on user.
func (s *Service[T, PT]) SignUp(ctx context.Context, in SignUpInput, user PT) (PT, error) {
	userID := strings.TrimSpace(in.UserID)
	if !pkg.ValidUserID(userID) {
		return nil, domain.NewAppError(domain.CodeValidation, "user_id must be 4-30 letters, digits, '.', '_' or '-'", nil)
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.NewAppError(domain.CodeValidation, "passwords do not match", nil)
	}
	if !in.AgreeToTerms {
		return nil, domain.NewAppError(domain.CodeValidation, "terms must be accepted", nil)
	}
	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	profile := in.Profile.Normalize()
	if err := profile.validate(); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "user_id is already taken", nil)
	}
	registered, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, domain.NewAppError(domain.CodeAlreadyExists, "email is already registered", nil)
	}

	now := s.now()
	acct := user.GetAccount()
	if s.gate != nil {
		verified, err := s.gate.IsVerified(ctx, email)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, domain.NewAppError(domain.CodeValidation, "email is not verified", nil)
		}
		acct.EmailVerifiedAt = &now
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	acct.UserID = userID
	acct.Email = email
	acct.PasswordHash = hash
	acct.IsActive = true
	acct.TermsAcceptedAt = &now
	acct.PasswordChangedAt = &now
	profile.applyTo(acct)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.gate != nil {
		if err := s.gate.Consume(ctx, email); err != nil {
			s.logger.WarnContext(ctx, "consume email verification",
				slog.String("email", email), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "account created",
		slog.String("user_type", string(s.userType)), slog.Uint64("id", uint64(acct.ID)))
	return user, nil
}

// Get returns user id when p may access it.
func (s *Service[T, PT]) Get(ctx context.Context, p domain.Principal, id uint) (PT, error) {
	if !p.CanAccess(s.userType, id) {
		return nil, domain.ErrForbidden
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return PT(user), nil
}

// Update applies patch and then apply (for type-specific fields) to user id.
func (s *Service[T, PT]) Update(ctx context.Context, p domain.Principal, id uint, patch ProfilePatch, apply func(PT)) (PT, error) {
	user, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	acct := user.GetAccount()
	profile := profileOf(acct).Apply(patch).Normalize()
	if err := profile.validate(); err != nil {
		return nil, err
	}
	profile.applyTo(acct)
	if apply != nil {
		apply(user)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate marks user id inactive. Inactive users cannot log in.
func (s *Service[T, PT]) Deactivate(ctx context.Context, p domain.Principal, id uint) error {
	user, err := s.Get(ctx, p, id)
	if err != nil {
		return err
	}
	acct := user.GetAccount()
	if !acct.IsActive {
		return nil
	}
	acct.IsActive = false
	return s.repo.Update(ctx, user)
}

// ChangePassword replaces the password of user id. Only the owner may do so.
func (s *Service[T, PT]) ChangePassword(ctx context.Context, p domain.Principal, id uint, in ChangePasswordInput) error {
	if p.UserType != s.userType || p.ID != id {
		return domain.ErrForbidden
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	acct := PT(user).GetAccount()

	if !CheckPassword(acct.PasswordHash, in.OldPassword) {
		return domain.NewAppError(domain.CodeValidation, "old password is incorrect", nil)
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.NewAppError(domain.CodeValidation, "passwords do not match", nil)
	}
	if in.NewPassword == in.OldPassword {
		return domain.NewAppError(domain.CodeValidation, "new password must differ from the old one", nil)
	}
	if err := ValidatePassword(in.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	now := s.now()
	acct.PasswordHash = hash
	acct.PasswordChangedAt = &now
	return s.repo.Update(ctx, user)
}

// CheckUserID reports whether userID could be used for a new account.
func (s *Service[T, PT]) CheckUserID(ctx context.Context, userID string) (*Availability, error) {
	userID = strings.TrimSpace(userID)
	res := &Availability{UserID: userID}
	if !pkg.ValidUserID(userID) {
		res.Reason = "Must be 4-30 characters: letters, digits, '.', '_' or '-'"
		return res, nil
	}
	taken, err := s.repo.ExistsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		res.Reason = "This user id is already taken"
		return res, nil
	}
	res.Available = true
	return res, nil
}

// List returns one page of users. Callers are expected to be staff.
func (s *Service[T, PT]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	return s.repo.List(ctx, req)
}

// SetFlags updates the administrative flags of user id. Nil flags are left alone.
func (s *Service[T, PT]) SetFlags(ctx context.Context, id uint, active, staff *bool) (PT, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	acct := PT(user).GetAccount()
	if active != nil {
		acct.IsActive = *active
	}
	if staff != nil {
		acct.IsStaff = *staff
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return PT(user), nil
}

// GetAny returns user id without an access check.
func (s *Service[T, PT]) GetAny(ctx context.Context, id uint) (PT, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return PT(user), nil
}

// Delete removes user id permanently.
func (s *Service[T, PT]) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Store exposes the login lookups of the underlying repository.
func (s *Service[T, PT]) Store() domain.AccountStore {
	return s.repo
}
