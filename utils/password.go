package utils

import (
	"strings"
	"unicode"
)

// PasswordPolicyError lists every rule a candidate password must satisfy. It
// is returned verbatim in the 400 body so clients can show the full scheme.
var PasswordScheme = map[string]string{
	"capital_letter": "At least once capital letter is required.",
	"numeric":        "At least once numeric is required.",
	"cannot_be_used": "Username, first or last name, email.",
	"spaces":         "Password must not contain spaces.",
}

// ValidatePassword enforces the registration password policy: at least one
// capital letter and one digit, no spaces, and the password must not contain
// the username, first/last name, or the email local part (forwards or
// reversed).
func ValidatePassword(password, username, firstName, lastName, email string) bool {
	if !hasUpper(password) || !hasDigit(password) {
		return false
	}
	if strings.Contains(password, " ") {
		return false
	}

	lower := strings.ToLower(password)
	emailName := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	forbidden := []string{
		strings.ToLower(username),
		strings.ToLower(firstName),
		strings.ToLower(lastName),
		strings.ToLower(email),
		emailName,
	}
	for _, word := range forbidden {
		if word == "" {
			continue
		}
		if strings.Contains(lower, word) || strings.Contains(lower, reverse(word)) {
			return false
		}
	}

	return true
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
