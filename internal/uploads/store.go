// Package uploads manages the on-disk storage of user-uploaded files.
// Persisted note records hold only the sanitized, path-free stored reference;
// the storage root itself is configuration, so records stay valid across
// deployments.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrInvalidFile means the client-supplied filename was empty or reduced to
// nothing after sanitizing.
var ErrInvalidFile = errors.New("invalid or missing filename")

// ReadFallback is stored as note content when an uploaded file cannot be
// read as UTF-8 text.
const ReadFallback = "Error reading file content"

type Store struct {
	root string
}

// NewStore creates the upload root if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes the uploaded content under the managed root and returns the
// stored reference. The reference is the sanitized base name prefixed with a
// UUID so uploads from different notes can never overwrite each other.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := Sanitize(filename)
	if name == "" {
		return "", ErrInvalidFile
	}

	ref := uuid.NewString() + "_" + name
	f, err := os.Create(filepath.Join(s.root, ref))
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	return ref, nil
}

// Path resolves a stored reference to a path under the root. Only the base
// name of ref is used, so legacy absolute-path values and traversal attempts
// cannot escape the managed directory.
func (s *Store) Path(ref string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(ref, "\\", "/"))
	if base == "" || base == "." || base == ".." {
		return "", ErrInvalidFile
	}
	return filepath.Join(s.root, base), nil
}

// Open opens a stored file for reading.
func (s *Store) Open(ref string) (*os.File, error) {
	path, err := s.Path(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes the stored file if present. A missing file is not an error.
func (s *Store) Remove(ref string) error {
	path, err := s.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// ReadText extracts the file content as UTF-8 text for file-type notes.
// Best effort: unreadable or binary files yield the fixed fallback string.
func (s *Store) ReadText(ref string) string {
	path, err := s.Path(ref)
	if err != nil {
		return ReadFallback
	}
	data, err := os.ReadFile(path)
	if err != nil || !utf8.Valid(data) {
		return ReadFallback
	}
	return string(data)
}

// Sanitize reduces a client-supplied filename to a safe base name: path
// components are stripped and anything outside [A-Za-z0-9._-] becomes an
// underscore. Returns "" when nothing usable remains.
func Sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), "._")
	if name == "" {
		return ""
	}
	return name
}
