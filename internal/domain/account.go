package domain

import (
	"context"
	"time"
)

// UserType distinguishes the two sides of the marketplace.
type UserType string

const (
	UserTypeBusiness   UserType = "business"
	UserTypeFreelancer UserType = "freelancer"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeBusiness || t == UserTypeFreelancer
}

// Account holds the fields shared by every user type. It is embedded in the
// concrete user models, so each user type gets its own table.
type Account struct {
	BaseModel
	UserID            string     `gorm:"size:30;uniqueIndex;not null" json:"user_id"`
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"size:255;not null" json:"-"`
	FirstName         string     `gorm:"size:100;not null" json:"first_name"`
	LastName          string     `gorm:"size:100;not null" json:"last_name"`
	Mobile            string     `gorm:"size:32" json:"mobile"`
	Country           string     `gorm:"size:2" json:"country"`
	Language          string     `gorm:"size:8" json:"language"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	IsStaff           bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser       bool       `gorm:"not null;default:false" json:"is_superuser"`
	TermsAcceptedAt   *time.Time `json:"terms_accepted_at"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at"`
	LastLoginAt       *time.Time `json:"last_login_at"`
	PasswordChangedAt *time.Time `json:"-"`
}

// GetAccount returns the shared account fields. It is promoted to every
// model embedding Account.
func (a *Account) GetAccount() *Account { return a }

// BusinessUser is an employer account.
type BusinessUser struct {
	Account
	Company string `gorm:"size:200;not null" json:"company"`
}

// TableName pins the table name used by GORM.
func (BusinessUser) TableName() string { return "business_users" }

// FreelancerUser is a freelancer account.
type FreelancerUser struct {
	Account
	Headline string `gorm:"size:200" json:"headline"`
}

// TableName pins the table name used by GORM.
func (FreelancerUser) TableName() string { return "freelancer_users" }

// AccountStore is the slice of a user repository needed by login and
// other cross-type features.
type AccountStore interface {
	GetAccountByUserID(ctx context.Context, userID string) (*Account, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// UserRepository defines the data access interface for one user type.
type UserRepository[T any] interface {
	AccountStore
	Create(ctx context.Context, user *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	GetByUserID(ctx context.Context, userID string) (*T, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, req PageRequest) (*PageResult[T], error)
	Update(ctx context.Context, user *T) error
	Delete(ctx context.Context, id uint) error
}

type (
	BusinessUserRepository   = UserRepository[BusinessUser]
	FreelancerUserRepository = UserRepository[FreelancerUser]
)

// Principal identifies the caller of an authenticated request.
type Principal struct {
	ID       uint
	UserType UserType
	Staff    bool
}

// CanAccess reports whether p may act on the account of the given type and id.
// Staff principals may act on any account.
func (p Principal) CanAccess(t UserType, id uint) bool {
	return p.Staff || (p.UserType == t && p.ID == id)
}
