// Package meshdata holds raw per-material mesh sections and their on-disk encodings.
package meshdata

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// NoMaterial is the material name used when a section's material could not be resolved.
const NoMaterial = "NONE"

// Section validation errors.
var (
	ErrAttributeMismatch   = errors.New("vertex attribute counts differ")
	ErrBoundsMismatch      = errors.New("section bounds do not match data")
	ErrIndexOutOfRange     = errors.New("index out of section vertex range")
	ErrInvalidMaterialName = errors.New("invalid material name")
	ErrBrokenChain         = errors.New("section bounds are not chained")
)

// Bounds locates a section inside a flattened vertex and index buffer.
type Bounds struct {
	MinVertex    int // First vertex index
	MaxVertex    int // Last vertex index (inclusive)
	FirstIndex   int // Offset of the first index
	NumTriangles int // Triangle count
}

// VertexCount returns the number of vertices the bounds span.
func (b Bounds) VertexCount() int {
	return b.MaxVertex - b.MinVertex + 1
}

// String returns the bounds as "[min,max,first,tris]".
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b.MinVertex, b.MaxVertex, b.FirstIndex, b.NumTriangles)
}

// Section is one contiguous run of a mesh sharing a single material.
// Attribute slices are flat: three floats per vertex for positions, normals
// and tangents, two for UVs. Indices are local to the section and start at 0.
type Section struct {
	Bounds   Bounds
	Material string
	Vertices []float32
	Normals  []float32
	Tangents []float32
	UVs      []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices held by the section.
func (s *Section) VertexCount() int {
	return len(s.Vertices) / 3
}

// TriangleCount returns the number of triangles held by the section.
func (s *Section) TriangleCount() int {
	return len(s.Indices) / 3
}

// Clone returns a deep copy of the section.
func (s *Section) Clone() Section {
	return Section{
		Bounds:   s.Bounds,
		Material: s.Material,
		Vertices: append([]float32(nil), s.Vertices...),
		Normals:  append([]float32(nil), s.Normals...),
		Tangents: append([]float32(nil), s.Tangents...),
		UVs:      append([]float32(nil), s.UVs...),
		Indices:  append([]uint32(nil), s.Indices...),
	}
}

// Validate checks that the section's arrays agree with each other and with its bounds.
func (s *Section) Validate() error {
	if err := ValidateMaterialName(s.Material); err != nil {
		return err
	}

	n := s.VertexCount()
	if len(s.Vertices)%3 != 0 || len(s.Normals) != 3*n || len(s.Tangents) != 3*n || len(s.UVs) != 2*n {
		return fmt.Errorf("%w: %d positions, %d normals, %d tangents, %d uvs",
			ErrAttributeMismatch, len(s.Vertices), len(s.Normals), len(s.Tangents), len(s.UVs))
	}
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrBoundsMismatch, len(s.Indices))
	}
	if s.Bounds.VertexCount() != n {
		return fmt.Errorf("%w: bounds %s span %d vertices, have %d", ErrBoundsMismatch, s.Bounds, s.Bounds.VertexCount(), n)
	}
	if s.Bounds.NumTriangles != s.TriangleCount() {
		return fmt.Errorf("%w: bounds %s declare %d triangles, have %d", ErrBoundsMismatch, s.Bounds, s.Bounds.NumTriangles, s.TriangleCount())
	}
	for i, idx := range s.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d = %d, %d vertices", ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

// ValidateMaterialName rejects names the text format cannot carry.
func ValidateMaterialName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidMaterialName)
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidMaterialName, name)
	}
	return nil
}

// ValidateChain checks that each section's bounds continue where the previous one ended.
func ValidateChain(sections []Section) error {
	for i := 1; i < len(sections); i++ {
		prev, cur := sections[i-1].Bounds, sections[i].Bounds
		if cur.MinVertex != prev.MaxVertex+1 {
			return fmt.Errorf("%w: section %d starts at vertex %d, previous ends at %d", ErrBrokenChain, i, cur.MinVertex, prev.MaxVertex)
		}
		if cur.FirstIndex != prev.FirstIndex+prev.NumTriangles*3 {
			return fmt.Errorf("%w: section %d starts at index %d, want %d", ErrBrokenChain, i, cur.FirstIndex, prev.FirstIndex+prev.NumTriangles*3)
		}
	}
	return nil
}

// CloneAll deep-copies a section list.
func CloneAll(sections []Section) []Section {
	if sections == nil {
		return nil
	}
	out := make([]Section, len(sections))
	for i := range sections {
		out[i] = sections[i].Clone()
	}
	return out
}
