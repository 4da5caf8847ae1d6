// Package perturb applies seeded randomized modifications to layers: defect
// removal and positional jitter. All randomness comes from one explicit
// rng.Stream so that identical seeds reproduce identical structures.
package perturb

import (
	"latgen/internal/lattice"
	"latgen/internal/layer"
	"latgen/pkg/geom"
	"latgen/pkg/rng"
)

// Dist selects the jitter displacement distribution.
type Dist string

const (
	// DistUniform draws each axis displacement uniformly in [-max, max].
	DistUniform Dist = "uniform"
	// DistNormal draws each axis displacement from a normal distribution
	// with sigma max/3, clamped to [-max, max].
	DistNormal Dist = "normal"
)

// Spec configures the perturbation of one substrate.
type Spec struct {
	// DefectFraction is the independent removal probability per atom.
	DefectFraction float64
	// JitterMax bounds the displacement magnitude per axis in nm.
	JitterMax float64
	// JitterDist selects the displacement distribution. Defaults to uniform.
	JitterDist Dist
}

// Enabled reports whether the spec modifies atoms at all.
func (s Spec) Enabled() bool {
	return s.DefectFraction > 0 || s.JitterMax > 0
}

// Apply perturbs the layer using draws from the stream and returns the
// result. The input layer is not modified.
//
// Draw order is fixed and caller-visible: atoms are visited in their
// replication order; each atom consumes one defect draw when defects are
// enabled, then, only if it was retained and jitter is enabled, one jitter
// draw per axis (x, y, z). A disabled spec consumes zero draws so that
// downstream perturbations stay reproducible whether or not this stage runs.
func Apply(l layer.Layer, spec Spec, stream *rng.Stream) layer.Layer {
	if !spec.Enabled() {
		return l
	}

	points := make([]lattice.Point, 0, len(l.Points))
	for _, p := range l.Points {
		if spec.DefectFraction > 0 {
			if stream.Float64() < spec.DefectFraction {
				continue
			}
		}
		if spec.JitterMax > 0 {
			p.Pos = p.Pos.Add(geom.Coord{
				X: displacement(spec, stream),
				Y: displacement(spec, stream),
				Z: displacement(spec, stream),
			})
		}
		points = append(points, p)
	}

	return layer.Layer{Points: points, Rotation: l.Rotation, Scale: l.Scale, ZOffset: l.ZOffset}
}

func displacement(spec Spec, stream *rng.Stream) float64 {
	switch spec.JitterDist {
	case DistNormal:
		d := stream.Norm() * spec.JitterMax / 3
		if d > spec.JitterMax {
			d = spec.JitterMax
		}
		if d < -spec.JitterMax {
			d = -spec.JitterMax
		}
		return d
	default:
		return (2*stream.Float64() - 1) * spec.JitterMax
	}
}
