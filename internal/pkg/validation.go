package pkg

import (
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	tagUserID         = "userid"
	tagMobile         = "mobile"
	tagStrongPassword = "strongpassword"
	tagCountry        = "country"
	tagLanguage       = "language"
)

const passwordPolicyMessage = "Must be 12-72 characters with upper and lower case letters, a digit and one of @$!%*?&"

// Password length bounds. The upper bound is bcrypt's input limit in bytes.
const (
	MinPasswordLength = 12
	MaxPasswordBytes  = 72
	PasswordSpecials  = "@$!%*?&"
)

var (
	userIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_.-]{4,30}$`)
	mobilePattern   = regexp.MustCompile(`^\+?[0-9]{1,4}[- ]?[0-9]{6,14}$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
	countryPattern  = regexp.MustCompile(`^[A-Za-z]{2}$`)
	languagePattern = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator
// engine. It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation(tagUserID, stringRule(ValidUserID))
		_ = v.RegisterValidation(tagMobile, stringRule(ValidMobile))
		_ = v.RegisterValidation(tagStrongPassword, stringRule(StrongPassword))
		_ = v.RegisterValidation(tagCountry, stringRule(countryPattern.MatchString))
		_ = v.RegisterValidation(tagLanguage, stringRule(languagePattern.MatchString))
	})
}

func stringRule(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}
}

// ValidUserID reports whether s is an acceptable login id.
func ValidUserID(s string) bool {
	return userIDPattern.MatchString(s)
}

// ValidMobile reports whether s looks like a country code followed by a subscriber number.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// StrongPassword reports whether s satisfies the account password policy.
func StrongPassword(s string) bool {
	if len([]rune(s)) < MinPasswordLength || len(s) > MaxPasswordBytes {
		return false
	}
	if !passwordCharset.MatchString(s) {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit && strings.ContainsAny(s, PasswordSpecials)
}

// PasswordPolicyMessage describes the password policy to API clients.
func PasswordPolicyMessage() string {
	return passwordPolicyMessage
}
