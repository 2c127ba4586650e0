package extract

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
)

// writeTriangleGLTF writes a glTF file with two primitives sharing one
// triangle's positions: an indexed one using material M_Brick and a
// non-indexed one without material.
func writeTriangleGLTF(t *testing.T, mode string) string {
	t.Helper()

	var buf bytes.Buffer
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	for _, i := range []uint16{0, 2, 1} {
		binary.Write(&buf, binary.LittleEndian, i)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": %q}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "materials": [{"name": "M_Brick"}],
  "meshes": [{"name": "Wall", "primitives": [
    {"attributes": {"POSITION": 0}, "indices": 1, "material": 0%s},
    {"attributes": {"POSITION": 0}}
  ]}]
}`, buf.Len(), uri, mode)

	path := filepath.Join(t.TempDir(), "SM_Wall.gltf")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write glTF fixture: %v", err)
	}
	return path
}

func TestLoadGLTF(t *testing.T) {
	mesh, err := LoadGLTF(writeTriangleGLTF(t, ""))
	if err != nil {
		t.Fatalf("LoadGLTF failed: %v", err)
	}
	if mesh.Name() != "SM_Wall" {
		t.Errorf("name = %q, want SM_Wall", mesh.Name())
	}

	lod, ok := mesh.LOD(0)
	if !ok {
		t.Fatal("LOD 0 missing")
	}
	if len(lod.Sections) != 2 || len(lod.Positions) != 6 || len(lod.Indices) != 6 {
		t.Fatalf("sections %d, positions %d, indices %d", len(lod.Sections), len(lod.Positions), len(lod.Indices))
	}

	want := RenderSection{MaterialIndex: -1, MinVertexIndex: 3, MaxVertexIndex: 5, FirstIndex: 3, NumTriangles: 1}
	if lod.Sections[1] != want {
		t.Errorf("section 1 = %+v, want %+v", lod.Sections[1], want)
	}
	if lod.Indices[1] != 2 || lod.Indices[4] != 4 {
		t.Errorf("indices = %v", lod.Indices)
	}
	if mat, ok := mesh.Material(0); !ok || mat.Name != "M_Brick" {
		t.Errorf("material 0 = %v, %v", mat, ok)
	}

	table := materials.NewTable()
	sections := (&Extractor{Table: table}).Extract(mesh, math.TransformIdentity())
	if sections[0].Material != "M_Brick" || sections[1].Material != "NONE" {
		t.Errorf("materials = %q, %q", sections[0].Material, sections[1].Material)
	}
	for i := range sections {
		if err := sections[i].Validate(); err != nil {
			t.Errorf("section %d invalid: %v", i, err)
		}
	}
}

func TestLoadGLTF_Errors(t *testing.T) {
	if _, err := LoadGLTF(writeTriangleGLTF(t, `, "mode": 1`)); !errors.Is(err, ErrUnsupportedPrimitive) {
		t.Errorf("line primitive: got %v, want ErrUnsupportedPrimitive", err)
	}
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.gltf")); err == nil {
		t.Error("missing file should fail")
	}
}
