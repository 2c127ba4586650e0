package extract

import (
	"testing"

	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
	"github.com/Faultbox/meshbake/pkg/meshdata"
)

var (
	brick = materials.Material{Name: "M_Brick", Path: "/Game/M_Brick"}
	glass = materials.Material{Name: "M_Glass", Path: "/Game/M_Glass"}
)

// wallMesh has two sections: a brick triangle at vertices 0-2 and a glass
// quad at vertices 3-6.
func wallMesh() *StaticMesh {
	lod := &LODResource{
		Sections: []RenderSection{
			{MaterialIndex: 0, MinVertexIndex: 0, MaxVertexIndex: 2, FirstIndex: 0, NumTriangles: 1},
			{MaterialIndex: 1, MinVertexIndex: 3, MaxVertexIndex: 6, FirstIndex: 3, NumTriangles: 2},
		},
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Normals:  make([]math.Vec3, 7),
		Tangents: make([]math.Vec3, 7),
		UVs: [][]math.Vec2{{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1},
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
		}},
		Indices: []uint32{0, 1, 2, 3, 4, 5, 3, 5, 6},
	}
	for i := range lod.Normals {
		lod.Normals[i] = math.Vec3{X: 0, Y: 0, Z: 1}
		lod.Tangents[i] = math.Vec3{X: 1, Y: 0, Z: 0}
	}
	return &StaticMesh{
		MeshName:  "SM_Wall",
		LODs:      []*LODResource{lod},
		Materials: []materials.Material{brick, glass},
	}
}

func vecNear(a, b math.Vec3) bool {
	d := a.Sub(b)
	return d.Dot(d) < 1e-10
}

func TestExtract_Identity(t *testing.T) {
	table := materials.NewTable(materials.Row{Name: "Brick", Material: brick})
	e := &Extractor{Table: table}

	sections := e.Extract(wallMesh(), math.TransformIdentity())
	if len(sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(sections))
	}

	s0, s1 := sections[0], sections[1]
	if s0.Material != "Brick" {
		t.Errorf("section 0 material = %q, want Brick", s0.Material)
	}
	if s1.Material != "M_Glass" {
		t.Errorf("section 1 material = %q, want M_Glass", s1.Material)
	}
	if !table.Dirty() {
		t.Error("unseen material should mark the table dirty")
	}

	if want := (meshdata.Bounds{MinVertex: 3, MaxVertex: 6, FirstIndex: 3, NumTriangles: 2}); s1.Bounds != want {
		t.Errorf("section 1 bounds = %s, want %s", s1.Bounds, want)
	}

	// Indices rebased to the section's first vertex.
	wantIdx := []uint32{0, 1, 2, 0, 2, 3}
	for i, idx := range s1.Indices {
		if idx != wantIdx[i] {
			t.Errorf("section 1 index %d = %d, want %d", i, idx, wantIdx[i])
		}
	}
	if s1.VertexCount() != 4 || len(s1.UVs) != 8 {
		t.Errorf("section 1 has %d vertices, %d uv floats", s1.VertexCount(), len(s1.UVs))
	}
	if got := math.Vec3FromSlice(s1.Vertices, 6); got != (math.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("section 1 vertex 2 = %v", got)
	}
	if err := s1.Validate(); err != nil {
		t.Errorf("extracted section invalid: %v", err)
	}
}

func TestExtract_Offset(t *testing.T) {
	offset := math.Transform{
		Rotation:    math.QuatFromEuler(0, 90, 0),
		Translation: math.Vec3{X: 10, Y: 0, Z: 0},
	}
	e := &Extractor{}

	mesh := wallMesh()
	mesh.LODs[0].Normals[0] = math.Vec3{X: 1, Y: 0, Z: 0}

	sections := e.Extract(mesh, offset)
	s := sections[0]

	// (1,0,0) rotated 90 degrees about Z is (0,1,0), then shifted by +10 X.
	if got := math.Vec3FromSlice(s.Vertices, 3); !vecNear(got, math.Vec3{X: 10, Y: 1, Z: 0}) {
		t.Errorf("vertex 1 = %v, want (10,1,0)", got)
	}
	// Tangents rotate but do not translate.
	if got := math.Vec3FromSlice(s.Tangents, 0); !vecNear(got, math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("tangent 0 = %v, want (0,1,0)", got)
	}
	if got := math.Vec3FromSlice(s.Normals, 0); !vecNear(got, math.Vec3{X: 0, Y: 1, Z: 0}) {
		t.Errorf("normal 0 = %v, want (0,1,0)", got)
	}
	// Normals along the rotation axis are unchanged.
	if got := math.Vec3FromSlice(s.Normals, 3); !vecNear(got, math.Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normal 1 = %v, want (0,0,1)", got)
	}
}

func TestExtract_NoTable(t *testing.T) {
	e := &Extractor{}
	for _, s := range e.Extract(wallMesh(), math.TransformIdentity()) {
		if s.Material != meshdata.NoMaterial {
			t.Errorf("material = %q, want %s", s.Material, meshdata.NoMaterial)
		}
	}
}

func TestExtract_EmptySlotAndMissingUVs(t *testing.T) {
	mesh := wallMesh()
	mesh.Materials = mesh.Materials[:1]
	mesh.LODs[0].UVs = nil

	e := &Extractor{Table: materials.NewTable()}
	sections := e.Extract(mesh, math.TransformIdentity())

	if sections[1].Material != meshdata.NoMaterial {
		t.Errorf("empty slot material = %q, want %s", sections[1].Material, meshdata.NoMaterial)
	}
	for _, uv := range sections[1].UVs {
		if uv != 0 {
			t.Fatalf("missing UV channel should yield zeros, got %v", sections[1].UVs)
		}
	}
}

func TestExtract_Panics(t *testing.T) {
	broken := wallMesh()
	broken.LODs[0].Sections[1].MaxVertexIndex = 9

	tests := []struct {
		name string
		mesh Mesh
	}{
		{"nil mesh", nil},
		{"no LOD 0", &StaticMesh{MeshName: "SM_Empty"}},
		{"section outside buffers", broken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			(&Extractor{}).Extract(tt.mesh, math.TransformIdentity())
		})
	}
}

func TestExtractAll(t *testing.T) {
	table := materials.NewTable(
		materials.Row{Name: "Brick", Material: brick},
		materials.Row{Name: "Glass", Material: glass},
	)
	e := &Extractor{Table: table}

	components := []Component{
		{Mesh: wallMesh(), Offset: math.TransformIdentity()},
		NewComponent(wallMesh(), math.QuatIdentity(), math.Vec3{}, math.QuatIdentity(), math.Vec3{X: 0, Y: 5, Z: 0}),
	}

	sections, mutated := e.ExtractAll(components)
	if mutated {
		t.Error("all materials known, table should not be mutated")
	}
	if len(sections) != 4 {
		t.Fatalf("got %d sections, want 4", len(sections))
	}
	if got := math.Vec3FromSlice(sections[2].Vertices, 0); got != (math.Vec3{X: 0, Y: 5, Z: 0}) {
		t.Errorf("second component vertex 0 = %v, want (0,5,0)", got)
	}

	merged, stats := meshdata.Merge(sections)
	if stats.Output != 2 || merged[0].Material != "Brick" || merged[1].Material != "Glass" {
		t.Errorf("merge after extract: %+v, materials %q %q", stats, merged[0].Material, merged[1].Material)
	}

	unknown := wallMesh()
	unknown.Materials[1] = materials.Material{Name: "M_Slate"}
	if _, mutated := e.ExtractAll([]Component{{Mesh: unknown, Offset: math.TransformIdentity()}}); !mutated {
		t.Error("new material should report a mutated table")
	}
}
