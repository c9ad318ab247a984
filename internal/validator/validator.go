package validator

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/garrettladley/marine/internal/xerrors"
)

type Validator interface {
	// Validate validates the fields of the struct and returns a map of errors.
	// returns nil if no errors are found
	Validate() map[string]string
}

func Validate(v Validator) *xerrors.Error {
	if err := v.Validate(); err != nil {
		return xerrors.Validation(err)
	}
	return nil
}

// Fields collects per-field messages, keeping the first message for each field.
type Fields map[string]string

func (f Fields) Check(ok bool, field string, msg string) {
	if ok {
		return
	}
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Result returns nil when no check failed.
func (f Fields) Result() map[string]string {
	if len(f) == 0 {
		return nil
	}
	return f
}

func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}

func MinLen(s string, n int) bool {
	return utf8.RuneCountInString(s) >= n
}

func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; only bare addresses are valid input.
	return addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func Between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func OneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// StrongPassword reports whether s holds at least one lowercase letter,
// one uppercase letter and one digit.
func StrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
