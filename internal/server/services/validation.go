package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/motek/internal/common"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
	maxEmailLen    = 254
)

// NormalizeEmail trims and lower-cases an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs the structural check applied before registration.
// Full RFC validation happens at the HTTP boundary.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if email == "" || len(email) > maxEmailLen || at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	if !strings.Contains(email[at+1:], ".") || strings.ContainsAny(email, " \t\r\n") {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	return nil
}

// ValidatePassword enforces the password policy: 8 to 72 bytes with at least
// one lower-case letter, upper-case letter, digit and special character.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, maxPasswordLen)
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return fmt.Errorf("%w: password needs a lower-case letter, an upper-case letter, a digit and a special character", common.ErrorValidation)
	}
	return nil
}

// NormalizePlatform defaults an empty platform to web and rejects unknown tags.
func NormalizePlatform(platform string) (string, error) {
	switch p := strings.ToLower(strings.TrimSpace(platform)); p {
	case "":
		return common.PlatformWeb, nil
	case common.PlatformWeb, common.PlatformAndroid, common.PlatformIOS:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown platform %q", common.ErrorValidation, platform)
	}
}
