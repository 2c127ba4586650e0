package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
)

// ErrUnsupportedPrimitive is returned for glTF primitives that are not indexed triangle lists.
var ErrUnsupportedPrimitive = errors.New("unsupported glTF primitive")

// LoadGLTF reads a .gltf or .glb file into a single-LOD StaticMesh. Every
// primitive of every mesh becomes one render section; vertex and index
// buffers are concatenated in document order.
func LoadGLTF(path string) (*StaticMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh, err := meshFromDocument(name, doc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return mesh, nil
}

func meshFromDocument(name string, doc *gltf.Document) (*StaticMesh, error) {
	lod := &LODResource{UVs: [][]math.Vec2{nil}}
	mesh := &StaticMesh{MeshName: name, LODs: []*LODResource{lod}}
	slots := map[int]int{} // glTF material index -> mesh slot

	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				return nil, fmt.Errorf("%w: mesh %d primitive %d mode %v", ErrUnsupportedPrimitive, mi, pi, prim.Mode)
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return nil, fmt.Errorf("%w: mesh %d primitive %d has no positions", ErrUnsupportedPrimitive, mi, pi)
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, err
			}
			n := len(positions)
			base := len(lod.Positions)

			var indices []uint32
			if prim.Indices != nil {
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, err
				}
			} else {
				indices = make([]uint32, n)
				for i := range indices {
					indices[i] = uint32(i)
				}
			}
			if len(indices)%3 != 0 {
				return nil, fmt.Errorf("%w: mesh %d primitive %d has %d indices", ErrUnsupportedPrimitive, mi, pi, len(indices))
			}

			normals := make([][3]float32, n)
			if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
				if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
					return nil, err
				}
			}
			tangents := make([][4]float32, n)
			if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
				if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
					return nil, err
				}
			}
			uvs := make([][2]float32, n)
			if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
					return nil, err
				}
			}

			for i := 0; i < n; i++ {
				lod.Positions = append(lod.Positions, vec3(positions[i]))
				lod.Normals = append(lod.Normals, vec3(at3(normals, i)))
				t := at4(tangents, i)
				lod.Tangents = append(lod.Tangents, math.Vec3{X: t[0], Y: t[1], Z: t[2]})
				uv := at2(uvs, i)
				lod.UVs[0] = append(lod.UVs[0], math.Vec2{X: uv[0], Y: uv[1]})
			}

			first := len(lod.Indices)
			for _, idx := range indices {
				if int(idx) >= n {
					return nil, fmt.Errorf("%w: mesh %d primitive %d index %d beyond %d vertices", ErrUnsupportedPrimitive, mi, pi, idx, n)
				}
				lod.Indices = append(lod.Indices, idx+uint32(base))
			}

			slot := -1
			if prim.Material != nil {
				gi := int(*prim.Material)
				var ok bool
				if slot, ok = slots[gi]; !ok {
					mesh.Materials = append(mesh.Materials, gltfMaterial(doc, gi))
					slot = len(mesh.Materials) - 1
					slots[gi] = slot
				}
			}

			lod.Sections = append(lod.Sections, RenderSection{
				MaterialIndex:  slot,
				MinVertexIndex: base,
				MaxVertexIndex: base + n - 1,
				FirstIndex:     first,
				NumTriangles:   len(indices) / 3,
			})
		}
	}
	return mesh, nil
}

func gltfMaterial(doc *gltf.Document, i int) materials.Material {
	if i < 0 || i >= len(doc.Materials) || doc.Materials[i].Name == "" {
		return materials.Material{Name: "material_" + strconv.Itoa(i)}
	}
	return materials.Material{Name: doc.Materials[i].Name}
}

func vec3(v [3]float32) math.Vec3 { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }

func at2(s [][2]float32, i int) [2]float32 {
	if i < len(s) {
		return s[i]
	}
	return [2]float32{}
}

func at3(s [][3]float32, i int) [3]float32 {
	if i < len(s) {
		return s[i]
	}
	return [3]float32{}
}

func at4(s [][4]float32, i int) [4]float32 {
	if i < len(s) {
		return s[i]
	}
	return [4]float32{}
}
