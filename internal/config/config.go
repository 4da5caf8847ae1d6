// Package config decodes and validates construction requests. A request is a
// plain YAML document; the core packages never read files themselves.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"latgen/internal/lattice"
	"latgen/internal/perturb"
	"latgen/internal/substrate"
	"latgen/pkg/geom"
)

// Env holds process-wide defaults overridable through the environment.
type Env struct {
	Seed     int64  `env:"LATGEN_SEED" envDefault:"1"`
	CellDB   string `env:"LATGEN_CELLDB" envDefault:"latgen.db"`
	LogLevel string `env:"LATGEN_LOG_LEVEL" envDefault:"info"`
}

// LoadEnv reads the LATGEN_* environment variables.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("config: %w", err)
	}
	return e, nil
}

// Request is one full construction request: substrates to build plus merge
// and output settings.
type Request struct {
	Title      string          `yaml:"title"`
	Output     string          `yaml:"output"`
	Substrates []SubstrateSpec `yaml:"substrates"`
	Merge      MergeSpec       `yaml:"merge"`
}

// MergeSpec maps onto system.Options.
type MergeSpec struct {
	BoxPadding    float64 `yaml:"box_padding"`
	MinSeparation float64 `yaml:"min_separation"`
}

// SubstrateSpec describes one substrate. Either Cell (a catalog name) or
// Lattice (an inline definition) must be set, not both.
type SubstrateSpec struct {
	Cell    string       `yaml:"cell"`
	Lattice *LatticeSpec `yaml:"lattice"`

	Extent  ExtentSpec `yaml:"extent"`
	Policy  string     `yaml:"policy"`
	Residue string     `yaml:"residue"`
	Seed    *int64     `yaml:"seed"`

	// Layers lists explicit per-layer transforms. When empty, Count layers
	// are generated at Spacing * index.
	Layers  []LayerSpec `yaml:"layers"`
	Count   int         `yaml:"count"`
	Spacing float64     `yaml:"spacing"`

	Perturbation PerturbSpec `yaml:"perturbation"`
}

// LatticeSpec is an inline unit-cell definition. Gamma is in degrees, the
// unit users see; the lattice package works in radians.
type LatticeSpec struct {
	Kind      string         `yaml:"kind"`
	A         float64        `yaml:"a"`
	B         float64        `yaml:"b"`
	Gamma     float64        `yaml:"gamma"`
	Templates []TemplateSpec `yaml:"templates"`
}

// TemplateSpec is one atom template of an inline cell.
type TemplateSpec struct {
	Name    string  `yaml:"name"`
	Element string  `yaml:"element"`
	U       float64 `yaml:"u"`
	V       float64 `yaml:"v"`
	Z       float64 `yaml:"z"`
}

// ExtentSpec is the requested in-plane size in nm.
type ExtentSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// LayerSpec is one explicit layer transform. Rotation is in degrees.
type LayerSpec struct {
	Z        float64 `yaml:"z"`
	Rotation float64 `yaml:"rotation"`
	Scale    float64 `yaml:"scale"`
}

// PerturbSpec maps onto perturb.Spec.
type PerturbSpec struct {
	DefectFraction float64 `yaml:"defect_fraction"`
	JitterMax      float64 `yaml:"jitter_max"`
	JitterDist     string  `yaml:"jitter_dist"`
}

// Load reads and validates a request file.
func Load(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a request document.
func Parse(data []byte) (*Request, error) {
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Request) validate() error {
	if len(r.Substrates) == 0 {
		return fmt.Errorf("config: request has no substrates")
	}
	for i, s := range r.Substrates {
		if s.Cell == "" && s.Lattice == nil {
			return fmt.Errorf("config: substrate %d: either cell or lattice is required", i)
		}
		if s.Cell != "" && s.Lattice != nil {
			return fmt.Errorf("config: substrate %d: cell and lattice are mutually exclusive", i)
		}
		if s.Extent.X <= 0 || s.Extent.Y <= 0 {
			return fmt.Errorf("config: substrate %d: extent must be positive on both axes", i)
		}
		if s.Residue == "" {
			return fmt.Errorf("config: substrate %d: residue name is required", i)
		}
		switch s.Policy {
		case "", string(lattice.PolicyAtLeast), string(lattice.PolicyExactFit):
		default:
			return fmt.Errorf("config: substrate %d: unknown policy %q", i, s.Policy)
		}
		switch s.Perturbation.JitterDist {
		case "", string(perturb.DistUniform), string(perturb.DistNormal):
		default:
			return fmt.Errorf("config: substrate %d: unknown jitter distribution %q", i, s.Perturbation.JitterDist)
		}
		if f := s.Perturbation.DefectFraction; f < 0 || f > 1 {
			return fmt.Errorf("config: substrate %d: defect fraction must be in [0, 1]", i)
		}
		if len(s.Layers) == 0 && s.Count > 1 && s.Spacing <= 0 {
			return fmt.Errorf("config: substrate %d: spacing is required for generated layers", i)
		}
	}
	return nil
}

// UnitCell resolves the inline lattice definition. It returns false when the
// spec references a catalog cell instead.
func (s SubstrateSpec) UnitCell() (lattice.UnitCell, bool, error) {
	if s.Lattice == nil {
		return lattice.UnitCell{}, false, nil
	}
	cell, err := s.Lattice.UnitCell()
	return cell, true, err
}

// UnitCell converts the inline definition into a validated lattice.UnitCell.
func (l LatticeSpec) UnitCell() (lattice.UnitCell, error) {
	templates := make([]lattice.AtomTemplate, len(l.Templates))
	for i, t := range l.Templates {
		templates[i] = lattice.AtomTemplate{Name: t.Name, Element: t.Element, U: t.U, V: t.V, Z: t.Z}
	}
	switch l.Kind {
	case string(lattice.Hexagonal):
		return lattice.NewHexagonal(l.A, templates...)
	case string(lattice.Triclinic):
		return lattice.NewTriclinic(l.A, l.B, l.Gamma*math.Pi/180, templates...)
	default:
		return lattice.UnitCell{}, fmt.Errorf("config: unknown lattice kind %q", l.Kind)
	}
}

// BuildPolicy returns the replication policy, defaulting to at-least.
func (s SubstrateSpec) BuildPolicy() lattice.Policy {
	if s.Policy == string(lattice.PolicyExactFit) {
		return lattice.PolicyExactFit
	}
	return lattice.PolicyAtLeast
}

// BuildExtent returns the requested extent.
func (s SubstrateSpec) BuildExtent() geom.Extent {
	return geom.Extent{X: s.Extent.X, Y: s.Extent.Y}
}

// BuildLayers expands the layer list: explicit layers when given, otherwise
// Count layers spaced Spacing apart starting at z = 0. A bare spec yields a
// single unrotated layer.
func (s SubstrateSpec) BuildLayers() []substrate.LayerSpec {
	if len(s.Layers) > 0 {
		out := make([]substrate.LayerSpec, len(s.Layers))
		for i, l := range s.Layers {
			out[i] = substrate.LayerSpec{
				ZOffset:  l.Z,
				Rotation: l.Rotation * math.Pi / 180,
				Scale:    l.Scale,
			}
		}
		return out
	}
	count := s.Count
	if count < 1 {
		count = 1
	}
	out := make([]substrate.LayerSpec, count)
	for i := range out {
		out[i] = substrate.LayerSpec{ZOffset: float64(i) * s.Spacing}
	}
	return out
}

// BuildPerturbation returns the perturbation spec.
func (s SubstrateSpec) BuildPerturbation() perturb.Spec {
	dist := perturb.DistUniform
	if s.Perturbation.JitterDist == string(perturb.DistNormal) {
		dist = perturb.DistNormal
	}
	return perturb.Spec{
		DefectFraction: s.Perturbation.DefectFraction,
		JitterMax:      s.Perturbation.JitterMax,
		JitterDist:     dist,
	}
}

// BuildSeed returns the substrate's seed, falling back to the given default.
func (s SubstrateSpec) BuildSeed(fallback int64) int64 {
	if s.Seed != nil {
		return *s.Seed
	}
	return fallback
}
