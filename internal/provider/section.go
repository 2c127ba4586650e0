// Package provider holds merged section data for rendering and collision.
package provider

import (
	"slices"

	"github.com/Faultbox/meshbake/pkg/math"
)

// SectionData is one renderable section: per-vertex attributes, triangle
// list and the index of its material in the owning material list.
type SectionData struct {
	Vertices     []math.Vec3
	Normals      []math.Vec3
	Tangents     []math.Vec3
	UVs          []math.Vec2
	Faces        []uint32
	MaterialSlot int
}

// Clone returns a deep copy of s.
func (s SectionData) Clone() SectionData {
	return SectionData{
		Vertices:     slices.Clone(s.Vertices),
		Normals:      slices.Clone(s.Normals),
		Tangents:     slices.Clone(s.Tangents),
		UVs:          slices.Clone(s.UVs),
		Faces:        slices.Clone(s.Faces),
		MaterialSlot: s.MaterialSlot,
	}
}

func cloneSections(in []SectionData) []SectionData {
	if in == nil {
		return nil
	}
	out := make([]SectionData, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// TangentBasis pairs a vertex normal with its tangent.
type TangentBasis struct {
	Normal  math.Vec3
	Tangent math.Vec3
}

// Color is an 8-bit RGBA vertex color.
type Color struct {
	R, G, B, A uint8
}

// VertexColor is the constant color written for every vertex.
var VertexColor = Color{0, 0, 0, 255}

// RenderData is the per-section output handed to a renderer.
type RenderData struct {
	Positions []math.Vec3
	Tangents  []TangentBasis
	Colors    []Color
	TexCoords []math.Vec2
	Triangles []uint32
}

// CollisionBox is a single box collision proxy. Extents are full sizes, not halves.
type CollisionBox struct {
	Center  math.Vec3
	Extents math.Vec3
}

// CollisionMesh is a closed box mesh around the provider bounds.
type CollisionMesh struct {
	Vertices  [8]math.Vec3
	Triangles [12][3]uint32
}

// boxTriangles indexes math.Box.Corners, two triangles per face.
var boxTriangles = [12][3]uint32{
	{0, 1, 3}, {1, 2, 3}, // +Z
	{4, 0, 7}, {0, 3, 7}, // -X
	{5, 1, 4}, {1, 0, 4}, // +Y
	{6, 2, 5}, {2, 1, 5}, // +X
	{7, 3, 6}, {3, 2, 6}, // -Y
	{7, 6, 4}, {6, 5, 4}, // -Z
}
