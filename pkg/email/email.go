package email

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes an email-style identity key. Keys are compared
// byte-for-byte in the stores, so every entry point must normalize the same
// way before touching them.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveNameFromEmail guesses a first and last name from the local part of an
// email address. Notifications fall back to it when the identity record
// carries no first name, so welcome and reset messages never address "".
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
