package business

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
)

// Service implements the business user use cases.
type Service = account.Service[domain.BusinessUser, *domain.BusinessUser]

// NewRepository creates the GORM repository for business users.
func NewRepository(db *gorm.DB) domain.BusinessUserRepository {
	return account.NewRepository[domain.BusinessUser](db, account.ListFields)
}

// NewService creates the business user service. A nil gate disables the
// verified email requirement at signup.
func NewService(repo domain.BusinessUserRepository, gate domain.VerificationGate, logger *slog.Logger) *Service {
	return account.NewService[domain.BusinessUser](repo, domain.UserTypeBusiness, gate, logger)
}
