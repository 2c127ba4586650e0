package provider

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshbake/internal/logger"
	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

// FromRaw converts raw sections into provider sections and the material list
// they index. Material names are looked up in table; each distinct material
// gets one slot. A name with no row, or a nil table, yields an empty material
// slot so the section still renders.
func FromRaw(raw []meshdata.Section, table *materials.Table) ([]SectionData, []materials.Material) {
	log := logger.Named("provider")
	if table == nil {
		log.Warn("no material table, material slots will be empty")
	}

	sections := make([]SectionData, 0, len(raw))
	var mats []materials.Material

	for i := range raw {
		r := &raw[i]
		s := SectionData{}

		mat, found := materials.Material{}, false
		if table != nil {
			mat, found = table.FindByName(r.Material)
			if !found {
				log.Warn("material row not found, slot left empty", zap.String("material", r.Material))
			}
		}
		if found {
			s.MaterialSlot = slotOf(&mats, mat)
		} else {
			mats = append(mats, materials.Material{})
			s.MaterialSlot = len(mats) - 1
		}

		n := r.VertexCount()
		s.Vertices = make([]math.Vec3, n)
		s.Normals = make([]math.Vec3, n)
		s.Tangents = make([]math.Vec3, n)
		for v := 0; v < n; v++ {
			s.Vertices[v] = math.Vec3FromSlice(r.Vertices, v*3)
			if v*3+2 < len(r.Normals) {
				s.Normals[v] = math.Vec3FromSlice(r.Normals, v*3)
			}
			if v*3+2 < len(r.Tangents) {
				s.Tangents[v] = math.Vec3FromSlice(r.Tangents, v*3)
			}
		}
		s.UVs = make([]math.Vec2, len(r.UVs)/2)
		for v := range s.UVs {
			s.UVs[v] = math.Vec2FromSlice(r.UVs, v*2)
		}
		s.Faces = append([]uint32(nil), r.Indices...)

		sections = append(sections, s)
	}
	return sections, mats
}

// slotOf returns the slot of mat in mats, appending it when absent.
func slotOf(mats *[]materials.Material, mat materials.Material) int {
	for i, m := range *mats {
		if m.Same(mat) {
			return i
		}
	}
	*mats = append(*mats, mat)
	return len(*mats) - 1
}

// ToRaw converts provider sections back into raw sections. Each section's
// material is named by the table row pointing at its slot's material, or
// meshdata.NoMaterial when there is none. Bounds are rebuilt as one
// contiguous layout in section order.
func ToRaw(sections []SectionData, mats []materials.Material, table *materials.Table) []meshdata.Section {
	if table == nil {
		logger.Named("provider").Warn("no material table, materials will not be set")
	}

	out := make([]meshdata.Section, 0, len(sections))
	vertexBase, indexBase := 0, 0

	for _, s := range sections {
		r := meshdata.Section{Material: meshdata.NoMaterial}
		if table != nil && s.MaterialSlot >= 0 && s.MaterialSlot < len(mats) {
			if name, ok := table.Find(mats[s.MaterialSlot]); ok {
				r.Material = name
			}
		}

		r.Vertices = make([]float32, 0, len(s.Vertices)*3)
		for _, v := range s.Vertices {
			r.Vertices = v.AppendTo(r.Vertices)
		}
		r.Normals = make([]float32, 0, len(s.Normals)*3)
		for _, v := range s.Normals {
			r.Normals = v.AppendTo(r.Normals)
		}
		r.Tangents = make([]float32, 0, len(s.Tangents)*3)
		for _, v := range s.Tangents {
			r.Tangents = v.AppendTo(r.Tangents)
		}
		r.UVs = make([]float32, 0, len(s.UVs)*2)
		for _, uv := range s.UVs {
			r.UVs = uv.AppendTo(r.UVs)
		}
		r.Indices = append([]uint32(nil), s.Faces...)

		r.Bounds = meshdata.Bounds{
			MinVertex:    vertexBase,
			MaxVertex:    vertexBase + len(s.Vertices) - 1,
			FirstIndex:   indexBase,
			NumTriangles: len(s.Faces) / 3,
		}
		vertexBase += len(s.Vertices)
		indexBase += len(s.Faces)

		out = append(out, r)
	}
	return out
}
