package account

import (
	"html"
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/simp-lee/flyingpig/internal/domain"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips markup from free text and trims it. Entities escaped
// by the sanitizer are decoded again because values are stored as plain
// text and escaped on output.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// NormalizeEmail trims and lowercases an address and rejects anything that
// is not a bare addr-spec.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return "", domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	return s, nil
}

// Profile holds the editable personal fields shared by every user type.
type Profile struct {
	FirstName string
	LastName  string
	Mobile    string
	Country   string
	Language  string
}

// Normalize sanitizes names, removes spaces from the mobile number and
// lowercases the country and language codes.
func (p Profile) Normalize() Profile {
	return Profile{
		FirstName: SanitizeText(p.FirstName),
		LastName:  SanitizeText(p.LastName),
		Mobile:    strings.TrimSpace(p.Mobile),
		Country:   strings.ToLower(strings.TrimSpace(p.Country)),
		Language:  strings.ToLower(strings.TrimSpace(p.Language)),
	}
}

func (p Profile) validate() error {
	if p.FirstName == "" {
		return domain.NewAppError(domain.CodeValidation, "first_name is required", nil)
	}
	if p.LastName == "" {
		return domain.NewAppError(domain.CodeValidation, "last_name is required", nil)
	}
	return nil
}

func (p Profile) applyTo(a *domain.Account) {
	a.FirstName = p.FirstName
	a.LastName = p.LastName
	a.Mobile = p.Mobile
	a.Country = p.Country
	a.Language = p.Language
}

func profileOf(a *domain.Account) Profile {
	return Profile{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Mobile:    a.Mobile,
		Country:   a.Country,
		Language:  a.Language,
	}
}

// ProfilePatch lists the profile fields a PATCH request may change. Nil
// fields are left alone.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Mobile    *string
	Country   *string
	Language  *string
}

// Apply returns p with the non-nil fields of patch replaced.
func (p Profile) Apply(patch ProfilePatch) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, patch.FirstName)
	set(&p.LastName, patch.LastName)
	set(&p.Mobile, patch.Mobile)
	set(&p.Country, patch.Country)
	set(&p.Language, patch.Language)
	return p
}
