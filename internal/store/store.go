package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smileynet/addrbook/internal/contact"
)

// FileStore persists an address book as one JSON document at a fixed path.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the logger used for load/save events.
func WithLogger(l *zap.Logger) Option {
	return func(s *FileStore) {
		s.logger = l
	}
}

// NewFileStore creates a FileStore reading and writing path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the file location.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes the whole book, replacing any previous content. The write is
// atomic: readers see either the old file or the new one.
func (s *FileStore) Save(book *contact.Book) error {
	data, err := Encode(book)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	s.logger.Info("address book saved",
		zap.String("path", s.path),
		zap.Int("contacts", book.Len()),
	)
	return nil
}

// Load reads the book. A missing file yields an empty book and no error; any
// other failure is returned.
func (s *FileStore) Load() (*contact.Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("address book not found, starting empty", zap.String("path", s.path))
			return contact.NewBook(), nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	book, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("store: parsing %s: %w", s.path, err)
	}
	s.logger.Info("address book loaded",
		zap.String("path", s.path),
		zap.Int("contacts", book.Len()),
	)
	return book, nil
}

// writeFileAtomic writes data to a temp file in the target directory, syncs
// it, and renames it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
