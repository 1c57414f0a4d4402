package contact

import (
	"strings"
	"time"
)

// DefaultBirthdayWindow is the number of days Birthdays looks ahead.
const DefaultBirthdayWindow = 7

// UpcomingBirthday is a contact whose next birthday falls inside a window.
type UpcomingBirthday struct {
	Name string
	Date time.Time // Midnight UTC of the occurrence.
}

// Book is the address book: records keyed by name, iterated in the order the
// names were first added. The zero value is not usable; call NewBook.
type Book struct {
	records map[string]*Record
	order   []string
}

// NewBook returns an empty Book.
func NewBook() *Book {
	return &Book{records: make(map[string]*Record)}
}

// AddRecord stores r under its name. An existing record with the same name is
// replaced (not merged) and keeps its position in iteration order.
func (b *Book) AddRecord(r *Record) {
	name := r.Name()
	if _, ok := b.records[name]; !ok {
		b.order = append(b.order, name)
	}
	b.records[name] = r
}

// Find returns the record stored under name.
func (b *Book) Find(name string) (*Record, bool) {
	r, ok := b.records[name]
	return r, ok
}

// Delete removes the record stored under name and reports whether it existed.
func (b *Book) Delete(name string) bool {
	if _, ok := b.records[name]; !ok {
		return false
	}
	delete(b.records, name)
	for i, n := range b.order {
		if n == name {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of records.
func (b *Book) Len() int {
	return len(b.records)
}

// Records returns the records in insertion order.
func (b *Book) Records() []*Record {
	out := make([]*Record, 0, len(b.order))
	for _, n := range b.order {
		out = append(out, b.records[n])
	}
	return out
}

func (b *Book) String() string {
	lines := make([]string, 0, len(b.order))
	for _, r := range b.Records() {
		lines = append(lines, r.String())
	}
	return strings.Join(lines, "\n")
}

// Birthdays returns contacts whose next birthday is within
// DefaultBirthdayWindow days of ref.
func (b *Book) Birthdays(ref time.Time) []UpcomingBirthday {
	return b.UpcomingBirthdays(ref, DefaultBirthdayWindow)
}

// UpcomingBirthdays returns every contact whose next birthday on or after
// ref's calendar date lies within the inclusive window [ref, ref+days].
// Results follow the book's iteration order.
func (b *Book) UpcomingBirthdays(ref time.Time, days int) []UpcomingBirthday {
	start := civilDate(ref)
	end := start.AddDate(0, 0, days)

	var out []UpcomingBirthday
	for _, r := range b.Records() {
		bd, ok := r.Birthday()
		if !ok {
			continue
		}
		next := NextOccurrence(bd, start)
		if next.After(end) {
			continue
		}
		out = append(out, UpcomingBirthday{Name: r.Name(), Date: next})
	}
	return out
}

// NextOccurrence returns the first anniversary of bd on or after ref's
// calendar date. A 29 February birthday falls on 1 March in non-leap years.
func NextOccurrence(bd Birthday, ref time.Time) time.Time {
	start := civilDate(ref)
	next := anniversary(bd, start.Year())
	if next.Before(start) {
		next = anniversary(bd, start.Year()+1)
	}
	return next
}

func anniversary(bd Birthday, year int) time.Time {
	if bd.month == time.February && bd.day == 29 && !isLeap(year) {
		return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, bd.month, bd.day, 0, 0, 0, 0, time.UTC)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// civilDate drops time of day and location, keeping ref's calendar date.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
