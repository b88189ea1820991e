package account

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/flyingpig/internal/domain"
	"github.com/simp-lee/flyingpig/internal/pkg"
)

// bcryptCost is lowered by tests.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks password against the account password policy.
func ValidatePassword(password string) error {
	if !pkg.StrongPassword(password) {
		return domain.NewAppError(domain.CodeValidation, pkg.PasswordPolicyMessage(), nil)
	}
	return nil
}

// dummyHash is compared against when an account does not exist so that
// unknown ids and wrong passwords take about the same time.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("flyingpig-dummy-password"), bcryptCost)
	if err != nil {
		panic(errors.Join(errors.New("account: dummy hash"), err))
	}
	return h
})

// EqualizeTiming burns one bcrypt comparison.
func EqualizeTiming(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
