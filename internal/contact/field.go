// Package contact implements the address book data model: validated field
// values, contact records, and the name-keyed Book with its birthday window.
package contact

import (
	"errors"
	"strings"
	"time"
)

// Validation messages shown to the user verbatim.
const (
	msgEmptyName       = "Name must not be empty."
	msgInvalidPhone    = "Phone number must be 10 digits."
	msgInvalidBirthday = "Invalid date format. Use DD.MM.YYYY"
)

// BirthdayLayout is the DD.MM.YYYY layout used to parse and render birthdays.
const BirthdayLayout = "02.01.2006"

// phoneDigits is the exact length of a valid phone number.
const phoneDigits = 10

// ValidationError reports a field value rejected at construction time.
// Message is a complete sentence suitable for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Name identifies a contact. It is the key under which a Record is stored.
type Name struct {
	value string
}

// NewName trims s and rejects the empty string.
func NewName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Name{}, &ValidationError{Field: "name", Message: msgEmptyName}
	}
	return Name{value: s}, nil
}

func (n Name) String() string {
	return n.value
}

// Phone is a ten digit phone number, stored exactly as entered.
type Phone struct {
	value string
}

// NewPhone accepts s only if it is exactly ten ASCII digits.
func NewPhone(s string) (Phone, error) {
	if len(s) != phoneDigits || !allDigits(s) {
		return Phone{}, &ValidationError{Field: "phone", Message: msgInvalidPhone}
	}
	return Phone{value: s}, nil
}

func (p Phone) String() string {
	return p.value
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Birthday is a calendar date without time of day or location.
type Birthday struct {
	year  int
	month time.Month
	day   int
}

// NewBirthday parses s as DD.MM.YYYY. Impossible dates such as 31.04.2000 or
// 29.02.2023 are rejected.
func NewBirthday(s string) (Birthday, error) {
	if !birthdayShape(s) {
		return Birthday{}, &ValidationError{Field: "birthday", Message: msgInvalidBirthday}
	}
	t, err := time.Parse(BirthdayLayout, s)
	if err != nil {
		return Birthday{}, &ValidationError{Field: "birthday", Message: msgInvalidBirthday}
	}
	return Birthday{year: t.Year(), month: t.Month(), day: t.Day()}, nil
}

// birthdayShape checks the fixed DD.MM.YYYY width before time.Parse, which
// would otherwise accept a signed year.
func birthdayShape(s string) bool {
	if len(s) != len(BirthdayLayout) || s[2] != '.' || s[5] != '.' {
		return false
	}
	return allDigits(s[:2]) && allDigits(s[3:5]) && allDigits(s[6:])
}

func (b Birthday) Year() int         { return b.year }
func (b Birthday) Month() time.Month { return b.month }
func (b Birthday) Day() int          { return b.day }

// Time returns the birthday as midnight UTC.
func (b Birthday) Time() time.Time {
	return time.Date(b.year, b.month, b.day, 0, 0, 0, 0, time.UTC)
}

func (b Birthday) String() string {
	return b.Time().Format(BirthdayLayout)
}
