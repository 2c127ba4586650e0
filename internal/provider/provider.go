package provider

import (
	"slices"
	"sync"

	"github.com/Faultbox/meshbake/internal/materials"
	"github.com/Faultbox/meshbake/pkg/math"
)

// Provider holds the sections, materials and bounds of one generated template.
// A single mutex guards all state; each method holds it only for its own duration.
type Provider struct {
	mu        sync.Mutex
	name      string
	sections  []SectionData
	materials []materials.Material
	bounds    math.Box
	hasData   bool
}

// New creates an empty provider.
func New() *Provider {
	return &Provider{}
}

// SetTemplateName sets the template name the data was generated for.
func (p *Provider) SetTemplateName(name string) {
	p.mu.Lock()
	p.name = name
	p.mu.Unlock()
}

// TemplateName returns the template name.
func (p *Provider) TemplateName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// SetSections replaces all section data, recomputes bounds and marks the
// provider as holding mesh data. The provider keeps its own copy.
func (p *Provider) SetSections(sections []SectionData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = cloneSections(sections)
	p.bounds = computeBounds(p.sections)
	p.hasData = true
}

// AddSection appends one section and grows the bounds to include it.
func (p *Provider) AddSection(section SectionData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = append(p.sections, section.Clone())
	p.bounds = computeBounds(p.sections)
}

// Sections returns a copy of all section data.
func (p *Provider) Sections() []SectionData {
	p.mu.Lock()
	defer p.mu.Unlock()
	return cloneSections(p.sections)
}

// SectionCount returns the number of sections.
func (p *Provider) SectionCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sections)
}

// Clear drops all sections and resets bounds. Materials are kept.
func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = nil
	p.bounds = math.Box{}
	p.hasData = false
}

// SetMaterials replaces the material list.
func (p *Provider) SetMaterials(mats []materials.Material) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.materials = slices.Clone(mats)
}

// AddMaterial appends a material and returns its slot.
func (p *Provider) AddMaterial(mat materials.Material) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.materials = append(p.materials, mat)
	return len(p.materials) - 1
}

// Materials returns a copy of the material list.
func (p *Provider) Materials() []materials.Material {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.materials)
}

// MaterialAt returns the material in slot. Out of range slots report false.
func (p *Provider) MaterialAt(slot int) (materials.Material, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if slot < 0 || slot >= len(p.materials) {
		return materials.Material{}, false
	}
	return p.materials[slot], true
}

// SectionSlot returns the material slot a section renders with. Sections
// pointing at a missing slot fall back to slot 0.
func (p *Provider) SectionSlot(idx int) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx < 0 || idx >= len(p.sections) {
		return 0, false
	}
	slot := p.sections[idx].MaterialSlot
	if slot < 0 || slot >= len(p.materials) {
		slot = 0
	}
	return slot, true
}

// HasMeshData reports whether sections were set and both sections and
// materials are non-empty.
func (p *Provider) HasMeshData() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasData && len(p.sections) > 0 && len(p.materials) > 0
}

// Bounds returns the axis-aligned box around all vertices. It is the zero
// box when no vertices are held.
func (p *Provider) Bounds() math.Box {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bounds
}

// BoxCenter returns the center of the bounds.
func (p *Provider) BoxCenter() math.Vec3 {
	return p.Bounds().Center()
}

// BoxRadius returns the half extents of the bounds.
func (p *Provider) BoxRadius() math.Vec3 {
	return p.Bounds().HalfExtents()
}

// SectionMesh returns render data for one section. Only LOD 0 exists.
func (p *Provider) SectionMesh(lod, idx int) (*RenderData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sectionMeshLocked(lod, idx)
}

// AllSectionMeshes returns render data for every section of lod, keyed by section index.
func (p *Provider) AllSectionMeshes(lod int) (map[int]*RenderData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[int]*RenderData, len(p.sections))
	for i := range p.sections {
		rd, ok := p.sectionMeshLocked(lod, i)
		if !ok {
			return nil, false
		}
		out[i] = rd
	}
	return out, true
}

func (p *Provider) sectionMeshLocked(lod, idx int) (*RenderData, bool) {
	if lod != 0 || idx < 0 || idx >= len(p.sections) {
		return nil, false
	}
	s := &p.sections[idx]

	n := len(s.Vertices)
	rd := &RenderData{
		Positions: slices.Clone(s.Vertices),
		Tangents:  make([]TangentBasis, n),
		Colors:    make([]Color, n),
		TexCoords: make([]math.Vec2, n),
		Triangles: slices.Clone(s.Faces),
	}
	for i := 0; i < n; i++ {
		if i < len(s.Normals) {
			rd.Tangents[i].Normal = s.Normals[i]
		}
		if i < len(s.Tangents) {
			rd.Tangents[i].Tangent = s.Tangents[i]
		}
		if i < len(s.UVs) {
			rd.TexCoords[i] = s.UVs[i]
		}
		rd.Colors[i] = VertexColor
	}
	return rd, true
}

// CollisionBox returns a single box proxy covering the bounds.
func (p *Provider) CollisionBox() CollisionBox {
	b := p.Bounds()
	return CollisionBox{Center: b.Center(), Extents: b.Size()}
}

// CollisionMesh returns an eight-vertex, twelve-triangle box around the bounds.
func (p *Provider) CollisionMesh() CollisionMesh {
	return CollisionMesh{
		Vertices:  p.Bounds().Corners(),
		Triangles: boxTriangles,
	}
}

func computeBounds(sections []SectionData) math.Box {
	box := math.EmptyBox()
	for _, s := range sections {
		for _, v := range s.Vertices {
			box = box.Expand(v)
		}
	}
	if box.IsEmpty() {
		return math.Box{}
	}
	return box
}
