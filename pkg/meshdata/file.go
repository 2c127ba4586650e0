package meshdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFileAccess is returned when a mesh data file or directory cannot be opened or created.
var ErrFileAccess = errors.New("mesh data file access")

// Format selects the on-disk encoding.
type Format int

const (
	FormatText   Format = iota // Whitespace-delimited text
	FormatBinary               // Versioned little-endian binary
)

// String returns the format name used in configuration.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	if f == FormatBinary {
		return ".emsh"
	}
	return ".txt"
}

// ParseFormat converts a configuration string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return FormatText, nil
	case "binary", "bin", "emsh":
		return FormatBinary, nil
	default:
		return FormatText, fmt.Errorf("unknown mesh data format %q", s)
	}
}

// WriteFile encodes sections to path, creating missing parent directories.
func WriteFile(path string, sections []Section, format Format) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: can't create directory for %s: %v", ErrFileAccess, path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: can't create/open output file %s: %v", ErrFileAccess, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %v", ErrFileAccess, path, cerr)
		}
	}()

	if format == FormatBinary {
		err = EncodeBinary(f, sections)
	} else {
		err = EncodeText(f, sections)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadFile reads and decodes a mesh data file in either format.
// A missing file satisfies errors.Is(err, fs.ErrNotExist).
func ReadFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: can't open file %s: %w", ErrFileAccess, path, err)
	}
	sections, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sections, nil
}

// RemoveFile deletes a mesh data file.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: can't delete file %s: %w", ErrFileAccess, path, err)
	}
	return nil
}

// ClearDir deletes dir and everything below it. A missing directory is not an error.
func ClearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: can't clear directory %s: %v", ErrFileAccess, dir, err)
	}
	return nil
}
