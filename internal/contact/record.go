package contact

import (
	"errors"
	"strings"
)

// ErrPhoneNotFound indicates the record holds no phone with the given value.
var ErrPhoneNotFound = errors.New("contact: phone not found")

// Record is a single contact: a name, an ordered list of phones, and an
// optional birthday. The name never changes after construction.
type Record struct {
	name     Name
	phones   []Phone
	birthday *Birthday
}

// NewRecord creates a record with no phones and no birthday.
func NewRecord(name string) (*Record, error) {
	n, err := NewName(name)
	if err != nil {
		return nil, err
	}
	return &Record{name: n}, nil
}

// Name returns the contact name.
func (r *Record) Name() string {
	return r.name.String()
}

// Phones returns a copy of the phone list in insertion order.
func (r *Record) Phones() []Phone {
	out := make([]Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// AddPhone validates s and appends it. Duplicates are kept.
func (r *Record) AddPhone(s string) error {
	p, err := NewPhone(s)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// RemovePhone removes the first phone equal to s and reports whether one was
// removed.
func (r *Record) RemovePhone(s string) bool {
	i := r.indexOf(s)
	if i < 0 {
		return false
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return true
}

// EditPhone replaces from with to at the same position. The replacement is
// validated first, so a rejected edit leaves the record unchanged. Returns
// ErrPhoneNotFound if from is not present.
func (r *Record) EditPhone(from, to string) error {
	p, err := NewPhone(to)
	if err != nil {
		return err
	}
	i := r.indexOf(from)
	if i < 0 {
		return ErrPhoneNotFound
	}
	r.phones[i] = p
	return nil
}

// FindPhone returns the stored phone equal to s.
func (r *Record) FindPhone(s string) (Phone, bool) {
	i := r.indexOf(s)
	if i < 0 {
		return Phone{}, false
	}
	return r.phones[i], true
}

// AddBirthday validates s and sets it, replacing any previous birthday.
func (r *Record) AddBirthday(s string) error {
	b, err := NewBirthday(s)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// Birthday returns the birthday if one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

func (r *Record) indexOf(s string) int {
	for i, p := range r.phones {
		if p.value == s {
			return i
		}
	}
	return -1
}

func (r *Record) String() string {
	vals := make([]string, len(r.phones))
	for i, p := range r.phones {
		vals[i] = p.value
	}
	s := "Contact name: " + r.name.value + ", phones: " + strings.Join(vals, "; ")
	if r.birthday != nil {
		s += ", birthday: " + r.birthday.String()
	}
	return s
}
