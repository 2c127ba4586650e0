// Package materials maps material names stored in mesh data files to material assets.
//
// Rows are kept in insertion order. A row is matched either by its name, which is
// what section files carry, or by the identity of the material it points at, which
// is what extracted meshes carry. Resolving an unseen material appends a row for it
// and marks the table dirty so the caller knows to persist it.
package materials

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// ErrDuplicateRow is returned when adding a row whose name is already taken.
var ErrDuplicateRow = errors.New("duplicate material row")

// Material identifies a material asset. The zero value means "no material".
type Material struct {
	Name string `yaml:"name" toml:"name"`
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`
}

// IsZero reports whether m is the empty material.
func (m Material) IsZero() bool {
	return m.Name == "" && m.Path == ""
}

// key is the identity used to match materials. The asset path wins when set.
func (m Material) key() string {
	if m.Path != "" {
		return m.Path
	}
	return m.Name
}

// Same reports whether two materials refer to the same asset.
func (m Material) Same(other Material) bool {
	if m.IsZero() || other.IsZero() {
		return m.IsZero() && other.IsZero()
	}
	return m.key() == other.key()
}

func (m Material) String() string {
	if m.IsZero() {
		return "<none>"
	}
	if m.Path == "" {
		return m.Name
	}
	return m.Name + " (" + m.Path + ")"
}

// Row is one entry of the table.
type Row struct {
	Name     string   `yaml:"name" toml:"name"`
	Material Material `yaml:"material" toml:"material"`
}

// Table is an ordered name to material mapping. It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	rows  []Row
	dirty bool
}

// NewTable creates a table holding a copy of rows. The table starts clean.
func NewTable(rows ...Row) *Table {
	return &Table{rows: append([]Row(nil), rows...)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Rows returns a copy of all rows in order.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Row(nil), t.rows...)
}

// Find returns the name of the first row pointing at mat.
func (t *Table) Find(mat Material) (string, bool) {
	if mat.IsZero() {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.rows {
		if r.Material.Same(mat) {
			return r.Name, true
		}
	}
	return "", false
}

// FindByName returns the material of the row called name.
func (t *Table) FindByName(name string) (Material, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexOf(name); i >= 0 {
		return t.rows[i].Material, true
	}
	return Material{}, false
}

// Add appends a row and marks the table dirty.
func (t *Table) Add(name string, mat Material) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRow, name)
	}
	t.rows = append(t.rows, Row{Name: name, Material: mat})
	t.dirty = true
	return nil
}

// Resolve returns the row name for mat, appending a new row named after the
// asset when no row points at it yet. The returned name never contains
// whitespace so it can be written as a single token.
func (t *Table) Resolve(mat Material) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range t.rows {
		if r.Material.Same(mat) {
			return r.Name
		}
	}

	name := t.uniqueName(rowName(mat))
	t.rows = append(t.rows, Row{Name: name, Material: mat})
	t.dirty = true
	return name
}

// Dirty reports whether rows were added since the table was loaded or last marked clean.
func (t *Table) Dirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

// MarkClean clears the dirty flag.
func (t *Table) MarkClean() {
	t.mu.Lock()
	t.dirty = false
	t.mu.Unlock()
}

func (t *Table) indexOf(name string) int {
	for i, r := range t.rows {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// uniqueName appends _1, _2, ... until name is free. Caller holds the lock.
func (t *Table) uniqueName(name string) string {
	if t.indexOf(name) < 0 {
		return name
	}
	for n := 1; ; n++ {
		candidate := name + "_" + strconv.Itoa(n)
		if t.indexOf(candidate) < 0 {
			return candidate
		}
	}
}

// rowName derives a single-token row name from the material asset name.
func rowName(mat Material) string {
	name := mat.Name
	if name == "" {
		name = mat.Path
		if i := strings.LastIndexAny(name, `/\`); i >= 0 {
			name = name[i+1:]
		}
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name)
	if name == "" {
		return "Material"
	}
	return name
}
