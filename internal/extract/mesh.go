// Package extract reads per-section render data out of static meshes.
package extract

import (
	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
)

// Mesh is a static mesh with per-LOD render resources and material slots.
type Mesh interface {
	Name() string
	LOD(i int) (*LODResource, bool)
	Material(slot int) (materials.Material, bool)
}

// RenderSection locates one material run inside an LOD's shared buffers.
type RenderSection struct {
	MaterialIndex  int
	MinVertexIndex int
	MaxVertexIndex int // Inclusive
	FirstIndex     int
	NumTriangles   int
}

// LODResource holds the shared vertex and index buffers of one level of detail.
type LODResource struct {
	Sections  []RenderSection
	Positions []math.Vec3
	Normals   []math.Vec3 // Tangent Z
	Tangents  []math.Vec3 // Tangent X
	UVs       [][]math.Vec2
	Indices   []uint32
}

// StaticMesh is a plain-data Mesh.
type StaticMesh struct {
	MeshName  string
	LODs      []*LODResource
	Materials []materials.Material
}

// Name returns the mesh name.
func (m *StaticMesh) Name() string { return m.MeshName }

// LOD returns the i-th level of detail.
func (m *StaticMesh) LOD(i int) (*LODResource, bool) {
	if i < 0 || i >= len(m.LODs) || m.LODs[i] == nil {
		return nil, false
	}
	return m.LODs[i], true
}

// Material returns the material assigned to slot.
func (m *StaticMesh) Material(slot int) (materials.Material, bool) {
	if slot < 0 || slot >= len(m.Materials) || m.Materials[slot].IsZero() {
		return materials.Material{}, false
	}
	return m.Materials[slot], true
}

// Component places a mesh relative to the generation root.
type Component struct {
	Mesh   Mesh
	Offset math.Transform
}

// NewComponent builds a component from world placements of the root and the mesh.
func NewComponent(mesh Mesh, rootRot math.Quat, rootPos math.Vec3, meshRot math.Quat, meshPos math.Vec3) Component {
	return Component{
		Mesh:   mesh,
		Offset: math.RelativeTransform(rootRot, rootPos, meshRot, meshPos),
	}
}
