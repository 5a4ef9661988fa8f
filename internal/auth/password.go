package auth

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
	passwordSymbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail reports whether email has the local@domain.tld shape accepted for login.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePasswordStrength requires at least 8 characters and at most MaxPasswordBytes
// bytes, with an uppercase letter, a lowercase letter, a digit and one of passwordSymbols.
func ValidatePasswordStrength(password string) bool {
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > MaxPasswordBytes {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
