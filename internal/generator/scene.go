package generator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshbake/internal/extract"
	"github.com/Faultbox/meshbake/pkg/math"
)

// ErrInvalidScene is returned for scene files missing required fields.
var ErrInvalidScene = errors.New("invalid scene")

// Placement is a world position plus pitch/yaw/roll rotation in degrees.
type Placement struct {
	Position [3]float32 `yaml:"position"`
	Rotation [3]float32 `yaml:"rotation"`
}

func (p Placement) quat() math.Quat {
	return math.QuatFromEuler(p.Rotation[0], p.Rotation[1], p.Rotation[2])
}

func (p Placement) pos() math.Vec3 {
	return math.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]}
}

// SceneComponent places one mesh file.
type SceneComponent struct {
	Mesh      string `yaml:"mesh"`
	Placement `yaml:",inline"`
}

// Scene describes a template as a set of placed meshes.
type Scene struct {
	Template   string           `yaml:"template"`
	Override   *Override        `yaml:"override,omitempty"`
	Root       Placement        `yaml:"root"`
	Components []SceneComponent `yaml:"components"`
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	if s.Template == "" && s.Override == nil {
		return nil, fmt.Errorf("%w: %s has no template name", ErrInvalidScene, path)
	}
	for i, c := range s.Components {
		if c.Mesh == "" {
			return nil, fmt.Errorf("%w: %s component %d has no mesh", ErrInvalidScene, path, i)
		}
		if !filepath.IsAbs(c.Mesh) {
			s.Components[i].Mesh = filepath.Join(filepath.Dir(path), c.Mesh)
		}
	}
	return &s, nil
}

// Request loads the scene's meshes and builds a generation request. Each
// mesh file is loaded once even if placed several times.
func (s *Scene) Request(force bool) (Request, error) {
	req := Request{Template: s.Template, Override: s.Override, Force: force}
	loaded := map[string]*extract.StaticMesh{}
	rootRot, rootPos := s.Root.quat(), s.Root.pos()

	for _, c := range s.Components {
		mesh, ok := loaded[c.Mesh]
		if !ok {
			var err error
			if mesh, err = extract.LoadGLTF(c.Mesh); err != nil {
				return Request{}, err
			}
			loaded[c.Mesh] = mesh
		}
		req.Components = append(req.Components, extract.NewComponent(mesh, rootRot, rootPos, c.quat(), c.pos()))
	}
	return req, nil
}
