package freelancer

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/module/account"
)

// Service implements the freelancer user use cases.
type Service = account.Service[domain.FreelancerUser, *domain.FreelancerUser]

// NewRepository creates the GORM repository for freelancer users.
func NewRepository(db *gorm.DB) domain.FreelancerUserRepository {
	return account.NewRepository[domain.FreelancerUser](db, account.ListFields)
}

// NewService creates the freelancer user service.
func NewService(repo domain.FreelancerUserRepository, gate domain.VerificationGate, logger *slog.Logger) *Service {
	return account.NewService[domain.FreelancerUser](repo, domain.UserTypeFreelancer, gate, logger)
}
