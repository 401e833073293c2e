package auth

import (
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// ValidName reports whether a username consists only of letters, digits,
// underscores and dots.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// ValidPassword requires at least one uppercase letter, at least one digit
// and a minimum length of 4.
func ValidPassword(password string) bool {
	if len(password) < 4 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
