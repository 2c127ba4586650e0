package meshdata

import "slices"

// MergeStats describes what a Merge call did.
type MergeStats struct {
	Input  int // Sections passed in
	Output int // Sections left after merging
	Merged int // Sections folded into an earlier one
}

// Empty reports whether Merge was called without any sections.
func (s MergeStats) Empty() bool {
	return s.Input == 0
}

// Merge folds sections that share a material name into the first section
// using that material. Surviving sections keep the order in which their
// material was first seen, and their bounds are renumbered so the list
// forms one contiguous buffer layout.
//
// The input slice is modified in place; the returned slice shares its backing array.
// Attribute slices of a surviving section are reallocated before growing,
// so sections cut from one shared buffer do not overwrite each other.
func Merge(sections []Section) ([]Section, MergeStats) {
	stats := MergeStats{Input: len(sections)}
	if len(sections) == 0 {
		return sections, stats
	}

	// Ordered slices keep first-seen order.
	var names []string
	var bases []int
	keep := make([]bool, len(sections))
	owned := make([]bool, len(sections))

	for i := range sections {
		base := -1
		for j, name := range names {
			if name == sections[i].Material {
				base = bases[j]
				break
			}
		}
		if base < 0 {
			names = append(names, sections[i].Material)
			bases = append(bases, i)
			keep[i] = true
			continue
		}

		if !owned[base] {
			clipSection(&sections[base])
			owned[base] = true
		}
		appendSection(&sections[base], &sections[i])
		stats.Merged++
	}

	out := sections[:0]
	for i := range sections {
		if keep[i] {
			out = append(out, sections[i])
		}
	}
	// Drop references held by the tail so merged data can be collected.
	for i := len(out); i < len(sections); i++ {
		sections[i] = Section{}
	}

	Rechain(out)
	stats.Output = len(out)
	return out, stats
}

// clipSection caps every attribute slice at its length so the next append
// copies instead of writing into memory past the section's end.
func clipSection(s *Section) {
	s.Vertices = slices.Clip(s.Vertices)
	s.Normals = slices.Clip(s.Normals)
	s.Tangents = slices.Clip(s.Tangents)
	s.UVs = slices.Clip(s.UVs)
	s.Indices = slices.Clip(s.Indices)
}

// appendSection appends src's geometry onto dst, offsetting src's indices
// by dst's current vertex count.
func appendSection(dst, src *Section) {
	offset := uint32(dst.VertexCount())
	for _, idx := range src.Indices {
		dst.Indices = append(dst.Indices, idx+offset)
	}
	dst.Vertices = append(dst.Vertices, src.Vertices...)
	dst.Normals = append(dst.Normals, src.Normals...)
	dst.Tangents = append(dst.Tangents, src.Tangents...)
	dst.UVs = append(dst.UVs, src.UVs...)
}

// Rechain recomputes every section's bounds from its data so that sections
// are laid out back to back starting at vertex 0 and index 0.
func Rechain(sections []Section) {
	for i := range sections {
		s := &sections[i]
		if i == 0 {
			s.Bounds.MinVertex = 0
			s.Bounds.FirstIndex = 0
		} else {
			prev := sections[i-1].Bounds
			s.Bounds.MinVertex = prev.MaxVertex + 1
			s.Bounds.FirstIndex = prev.FirstIndex + prev.NumTriangles*3
		}
		s.Bounds.MaxVertex = s.Bounds.MinVertex + s.VertexCount() - 1
		s.Bounds.NumTriangles = s.TriangleCount()
	}
}
