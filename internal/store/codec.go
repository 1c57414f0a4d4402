// Package store persists the address book to a single versioned JSON file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smileynet/addrbook/internal/contact"
)

// Version is the document format written by Encode.
const Version = 1

var (
	// ErrCorrupt indicates the stored document cannot be turned back into a book.
	ErrCorrupt = errors.New("store: corrupt address book")

	// ErrUnsupportedVersion indicates a document written by a newer format.
	ErrUnsupportedVersion = errors.New("store: unsupported format version")
)

// document is the on-disk shape. Fields are encoded one by one so the format
// does not depend on in-memory types.
type document struct {
	Version  int             `json:"version"`
	SavedAt  time.Time       `json:"saved_at"`
	Contacts []contactRecord `json:"contacts"`
}

type contactRecord struct {
	Name     string   `json:"name"`
	Phones   []string `json:"phones"`
	Birthday string   `json:"birthday,omitempty"`
}

// now is replaced in tests.
var now = time.Now

// Encode serializes every record of book in iteration order.
func Encode(book *contact.Book) ([]byte, error) {
	doc := document{
		Version:  Version,
		SavedAt:  now().UTC().Truncate(time.Second),
		Contacts: make([]contactRecord, 0, book.Len()),
	}
	for _, r := range book.Records() {
		phones := r.Phones()
		cr := contactRecord{
			Name:   r.Name(),
			Phones: make([]string, len(phones)),
		}
		for i, p := range phones {
			cr.Phones[i] = p.String()
		}
		if bd, ok := r.Birthday(); ok {
			cr.Birthday = bd.String()
		}
		doc.Contacts = append(doc.Contacts, cr)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("store: marshaling: %w", err)
	}
	return data, nil
}

// Decode parses a document produced by Encode. Every field is re-validated
// through the contact constructors. Unknown JSON fields are ignored.
func Decode(data []byte) (*contact.Book, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version < 1 {
		return nil, fmt.Errorf("%w: missing version", ErrCorrupt)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("%w: %d (supported: %d)", ErrUnsupportedVersion, doc.Version, Version)
	}

	book := contact.NewBook()
	for i, cr := range doc.Contacts {
		r, err := decodeRecord(cr)
		if err != nil {
			return nil, fmt.Errorf("%w: contact %d: %v", ErrCorrupt, i, err)
		}
		if _, dup := book.Find(r.Name()); dup {
			return nil, fmt.Errorf("%w: contact %d: duplicate name %q", ErrCorrupt, i, r.Name())
		}
		book.AddRecord(r)
	}
	return book, nil
}

func decodeRecord(cr contactRecord) (*contact.Record, error) {
	r, err := contact.NewRecord(cr.Name)
	if err != nil {
		return nil, err
	}
	for _, p := range cr.Phones {
		if err := r.AddPhone(p); err != nil {
			return nil, fmt.Errorf("phone %q: %w", p, err)
		}
	}
	if cr.Birthday != "" {
		if err := r.AddBirthday(cr.Birthday); err != nil {
			return nil, fmt.Errorf("birthday %q: %w", cr.Birthday, err)
		}
	}
	return r, nil
}
