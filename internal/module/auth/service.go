package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
)

// TokenIssuer signs access tokens for a principal.
type TokenIssuer interface {
	Issue(p domain.Principal) (string, time.Time, error)
}

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, userType domain.UserType, userID, password string) (*TokenResponse, error)
}

// authService implements Service.
type authService struct {
	stores map[domain.UserType]domain.AccountStore
	tokens TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new auth Service. stores maps every user type that
// may log in to its account store.
func NewService(stores map[domain.UserType]domain.AccountStore, tokens TokenIssuer, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		stores: stores,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Login authenticates an account of userType and returns a bearer token.
// Unknown ids, wrong passwords and inactive accounts are indistinguishable.
func (s *authService) Login(ctx context.Context, userType domain.UserType, userID, password string) (*TokenResponse, error) {
	store, ok := s.stores[userType]
	if !ok {
		return nil, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("unknown user type %q", userType), nil)
	}

	acc, err := store.GetAccountByUserID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			account.EqualizeTiming(password)
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !account.CheckPassword(acc.PasswordHash, password) || !acc.IsActive {
		return nil, domain.ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Issue(domain.Principal{ID: acc.ID, UserType: userType, Staff: acc.IsStaff})
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	if err := store.TouchLastLogin(ctx, acc.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "record last login",
			slog.String("user_type", string(userType)),
			slog.Uint64("id", uint64(acc.ID)),
			slog.Any("error", err),
		)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserType:  userType,
		UserID:    acc.UserID,
	}, nil
}
