package app

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
	"github.com/simp-lee/flyingpig/internal/module/business"
	"github.com/simp-lee/flyingpig/internal/module/freelancer"
)

// SuperuserInput describes an administrator account created from the
// command line.
type SuperuserInput struct {
	UserType  domain.UserType
	UserID    string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Company   string
}

// CreateSuperuser creates an active staff superuser. Email verification is
// not required.
func CreateSuperuser(ctx context.Context, db *gorm.DB, in SuperuserInput, logger *slog.Logger) (*domain.Account, error) {
	signup := account.SignUpInput{
		UserID:          in.UserID,
		Password:        in.Password,
		ConfirmPassword: in.Password,
		Email:           in.Email,
		AgreeToTerms:    true,
		Profile: account.Profile{
			FirstName: in.FirstName,
			LastName:  in.LastName,
		},
	}
	admin := domain.Account{IsStaff: true, IsSuperuser: true}

	switch in.UserType {
	case domain.UserTypeBusiness:
		company := account.SanitizeText(in.Company)
		if company == "" {
			return nil, domain.NewAppError(domain.CodeValidation, "company is required", nil)
		}
		svc := business.NewService(business.NewRepository(db), nil, logger)
		user, err := svc.SignUp(ctx, signup, &domain.BusinessUser{Account: admin, Company: company})
		if err != nil {
			return nil, err
		}
		return user.GetAccount(), nil
	case domain.UserTypeFreelancer:
		svc := freelancer.NewService(freelancer.NewRepository(db), nil, logger)
		user, err := svc.SignUp(ctx, signup, &domain.FreelancerUser{Account: admin})
		if err != nil {
			return nil, err
		}
		return user.GetAccount(), nil
	default:
		return nil, domain.NewAppError(domain.CodeValidation, fmt.Sprintf("unknown user type %q", in.UserType), nil)
	}
}
