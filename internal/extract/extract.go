package extract

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

// Extractor converts LOD 0 of meshes into raw sections.
type Extractor struct {
	// Table resolves material assets to row names. When nil every
	// section gets meshdata.NoMaterial.
	Table *materials.Table
}

// Extract reads every render section of LOD 0 of mesh, carrying positions,
// normals and tangents through offset. Indices are rebased so each section
// starts at vertex 0. Bounds are copied from the render section unchanged.
//
// Extract panics if mesh is nil, has no LOD 0, or its sections point outside
// the LOD buffers.
func (e *Extractor) Extract(mesh Mesh, offset math.Transform) []meshdata.Section {
	if mesh == nil {
		panic("extract: nil mesh")
	}
	lod, ok := mesh.LOD(0)
	if !ok {
		panic(fmt.Sprintf("extract: mesh %q has no LOD 0", mesh.Name()))
	}

	log := logger.Named("extract")
	if e.Table == nil {
		log.Warn("no material table, materials will not be set", zap.String("mesh", mesh.Name()))
	}

	out := make([]meshdata.Section, 0, len(lod.Sections))
	for i, rs := range lod.Sections {
		checkSection(mesh.Name(), i, rs, lod)
		out = append(out, e.extractSection(mesh, lod, rs, offset, log))
	}
	return out
}

func (e *Extractor) extractSection(mesh Mesh, lod *LODResource, rs RenderSection, offset math.Transform, log *zap.Logger) meshdata.Section {
	s := meshdata.Section{
		Bounds: meshdata.Bounds{
			MinVertex:    rs.MinVertexIndex,
			MaxVertex:    rs.MaxVertexIndex,
			FirstIndex:   rs.FirstIndex,
			NumTriangles: rs.NumTriangles,
		},
		Material: meshdata.NoMaterial,
	}

	if e.Table != nil {
		if mat, ok := mesh.Material(rs.MaterialIndex); ok {
			s.Material = e.Table.Resolve(mat)
		} else {
			log.Warn("material slot is empty",
				zap.String("mesh", mesh.Name()),
				zap.Int("slot", rs.MaterialIndex))
		}
	}

	n := rs.MaxVertexIndex - rs.MinVertexIndex + 1
	s.Vertices = make([]float32, 0, n*3)
	s.Normals = make([]float32, 0, n*3)
	s.Tangents = make([]float32, 0, n*3)
	s.UVs = make([]float32, 0, n*2)

	var uv0 []math.Vec2
	if len(lod.UVs) > 0 {
		uv0 = lod.UVs[0]
	}

	for v := rs.MinVertexIndex; v <= rs.MaxVertexIndex; v++ {
		s.Vertices = offset.TransformPoint(lod.Positions[v]).AppendTo(s.Vertices)
		s.Normals = offset.TransformVector(attr(lod.Normals, v)).AppendTo(s.Normals)
		s.Tangents = offset.TransformVector(attr(lod.Tangents, v)).AppendTo(s.Tangents)

		var uv math.Vec2
		if v < len(uv0) {
			uv = uv0[v]
		}
		s.UVs = uv.AppendTo(s.UVs)
	}

	first, count := rs.FirstIndex, rs.NumTriangles*3
	s.Indices = make([]uint32, count)
	for i, idx := range lod.Indices[first : first+count] {
		s.Indices[i] = idx - uint32(rs.MinVertexIndex)
	}
	return s
}

func attr(buf []math.Vec3, i int) math.Vec3 {
	if i < len(buf) {
		return buf[i]
	}
	return math.Vec3{}
}

func checkSection(mesh string, i int, rs RenderSection, lod *LODResource) {
	switch {
	case rs.MinVertexIndex < 0 || rs.MaxVertexIndex < rs.MinVertexIndex-1:
		panic(fmt.Sprintf("extract: mesh %q section %d has vertex range [%d,%d]", mesh, i, rs.MinVertexIndex, rs.MaxVertexIndex))
	case rs.MaxVertexIndex >= len(lod.Positions):
		panic(fmt.Sprintf("extract: mesh %q section %d vertex %d beyond %d positions", mesh, i, rs.MaxVertexIndex, len(lod.Positions)))
	case rs.FirstIndex < 0 || rs.NumTriangles < 0 || rs.FirstIndex+rs.NumTriangles*3 > len(lod.Indices):
		panic(fmt.Sprintf("extract: mesh %q section %d index range outside buffer", mesh, i))
	}
	for _, idx := range lod.Indices[rs.FirstIndex : rs.FirstIndex+rs.NumTriangles*3] {
		if int(idx) < rs.MinVertexIndex || int(idx) > rs.MaxVertexIndex {
			panic(fmt.Sprintf("extract: mesh %q section %d index %d outside [%d,%d]", mesh, i, idx, rs.MinVertexIndex, rs.MaxVertexIndex))
		}
	}
}

// ExtractAll extracts every component in order and concatenates the sections.
// The returned flag reports whether the material table gained rows, so the
// caller knows to persist it.
func (e *Extractor) ExtractAll(components []Component) ([]meshdata.Section, bool) {
	before := 0
	if e.Table != nil {
		before = e.Table.Len()
	}

	var all []meshdata.Section
	for _, c := range components {
		all = append(all, e.Extract(c.Mesh, c.Offset)...)
	}

	return all, e.Table != nil && e.Table.Len() != before
}
