package materials

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedTableFormat is returned for table files that are neither YAML nor TOML.
var ErrUnsupportedTableFormat = errors.New("unsupported material table format")

// tableFile is the on-disk layout shared by the YAML and TOML encodings.
type tableFile struct {
	Rows []Row `yaml:"rows" toml:"rows"`
}

// Load reads a table from path. The encoding is chosen by extension
// (.yaml, .yml or .toml). A missing file yields an empty table.
func Load(path string) (*Table, error) {
	unmarshal, _, err := codecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading material table: %w", err)
	}

	var f tableFile
	if err := unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing material table %s: %w", path, err)
	}

	t := NewTable()
	for _, r := range f.Rows {
		if r.Name == "" {
			return nil, fmt.Errorf("parsing material table %s: row without name", path)
		}
		if t.indexOf(r.Name) >= 0 {
			return nil, fmt.Errorf("parsing material table %s: %w: %s", path, ErrDuplicateRow, r.Name)
		}
		t.rows = append(t.rows, r)
	}
	return t, nil
}

// Save writes the table to path, creating parent directories, and marks it clean.
func (t *Table) Save(path string) error {
	_, marshal, err := codecFor(path)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := marshal(tableFile{Rows: t.rows})
	if err != nil {
		return fmt.Errorf("encoding material table: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating material table directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing material table: %w", err)
	}
	t.dirty = false
	return nil
}

func codecFor(path string) (func([]byte, any) error, func(any) ([]byte, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal, marshalYAML, nil
	case ".toml":
		return toml.Unmarshal, toml.Marshal, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedTableFormat, path)
	}
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
