package usecase

import (
	"unicode"

	"github.com/google/uuid"
)

const maxLoginLength = 64

// ValidateLogin accepts non-empty printable logins without whitespace.
func ValidateLogin(login string) bool {
	if login == "" || len(login) > maxLoginLength {
		return false
	}
	for _, r := range login {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// ValidOrderID reports whether id has the shape of a generated order id.
func ValidOrderID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
