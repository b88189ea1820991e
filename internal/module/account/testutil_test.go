package account

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/simp-lee/flyingpig/internal/domain"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

// setupTestDB creates an in-memory SQLite database with both user tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&domain.BusinessUser{}, &domain.FreelancerUser{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type businessRepo = Repository[domain.BusinessUser, *domain.BusinessUser]

func newBusinessRepo(t *testing.T) *businessRepo {
	return NewRepository[domain.BusinessUser](setupTestDB(t), ListFields)
}

func newBusinessUser(userID, email string) *domain.BusinessUser {
	return &domain.BusinessUser{
		Account: domain.Account{
			UserID:       userID,
			Email:        email,
			PasswordHash: "x",
			FirstName:    "Ada",
			LastName:     "Lovelace",
			IsActive:     true,
		},
		Company: "Analytical Engines",
	}
}

// fakeGate is a hand-written domain.VerificationGate.
type fakeGate struct {
	verified   map[string]bool
	consumed   []string
	isErr      error
	consumeErr error
}

func (g *fakeGate) IsVerified(_ context.Context, email string) (bool, error) {
	if g.isErr != nil {
		return false, g.isErr
	}
	return g.verified[email], nil
}

func (g *fakeGate) Consume(_ context.Context, email string) error {
	g.consumed = append(g.consumed, email)
	return g.consumeErr
}
