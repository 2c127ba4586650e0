package meshdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidTemplateName is returned for template names that cannot be used as a file base name.
var ErrInvalidTemplateName = errors.New("invalid template name")

// Store maps template names to mesh data files under Root.
// The file for template "Foo" is <Root>/Foo.txt (or Foo.emsh for the binary format).
type Store struct {
	Root   string
	Format Format
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, format Format) *Store {
	return &Store{Root: dir, Format: format}
}

// NormalizeName returns the canonical form of a template name.
// Names are compared in Unicode NFC so visually equal names share one file.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Path returns the file path for a template.
func (s *Store) Path(name string) (string, error) {
	n := NormalizeName(name)
	if n == "" || n == "." || n == ".." || strings.ContainsAny(n, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTemplateName, name)
	}
	return filepath.Join(s.Root, n+s.Format.Ext()), nil
}

// Write stores sections for a template.
func (s *Store) Write(name string, sections []Section) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return WriteFile(path, sections, s.Format)
}

// Read loads sections for a template.
func (s *Store) Read(name string) ([]Section, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return ReadFile(path)
}

// Remove deletes a template's file.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	return RemoveFile(path)
}

// Exists reports whether a file is stored for the template.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ClearAll deletes the store's root directory with all files in it.
func (s *Store) ClearAll() error {
	return ClearDir(s.Root)
}

// List returns the sorted template names that have a file in the store's format.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: listing %s: %v", ErrFileAccess, s.Root, err)
	}

	ext := s.Format.Ext()
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}
