package domain

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrNameTooLong  = errors.New("name exceeds maximum length")
)

const (
	// MaxNameLength is counted in characters, not bytes.
	MaxNameLength = 255
	// MaxEmailLength is the SMTP path limit.
	MaxEmailLength = 254
)

// Email is a lower-cased bare address. It is the account's login and the
// key the CLI and MCP server select users by.
type Email struct {
	value string
}

// NewEmail accepts a bare address with a dotted domain. Display-name forms
// like "Ada <ada@example.com>" are rejected.
func NewEmail(value string) (Email, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || len(value) > MaxEmailLength {
		return Email{}, ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return Email{}, ErrInvalidEmail
	}
	at := strings.LastIndexByte(value, '@')
	domainPart := value[at+1:]
	if !strings.Contains(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: value}, nil
}

func (e Email) String() string {
	return e.value
}

func (e Email) Equals(other Email) bool {
	return e.value == other.value
}

// IsZero reports whether the email was never set.
func (e Email) IsZero() bool {
	return e.value == ""
}

// Name is a display name with surrounding and repeated inner whitespace
// collapsed.
type Name struct {
	value string
}

func NewName(value string) (Name, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return Name{}, ErrEmptyName
	}
	if utf8.RuneCountInString(value) > MaxNameLength {
		return Name{}, ErrNameTooLong
	}
	return Name{value: value}, nil
}

func (n Name) String() string {
	return n.value
}

func (n Name) Equals(other Name) bool {
	return n.value == other.value
}
