// Package layer places one replicated lattice in 3D space by rotating,
// scaling and offsetting its points.
package layer

import (
	"math"

	"latgen/internal/lattice"
	"latgen/pkg/geom"
)

// Layer is an ordered set of lattice points at one z level, with the
// transform that produced it kept as provenance.
type Layer struct {
	Points   []lattice.Point
	Rotation float64
	Scale    float64
	ZOffset  float64
}

// Build applies rotation, then scale, then the z offset to the points, in
// that fixed order, and returns the resulting Layer. Rotation is
// counter-clockwise in radians about the point-set centroid, and scaling is
// performed about the same centroid, so stacked layers stay aligned by
// default. A zero rotation and unit scale leave positions bit-identical.
func Build(points []lattice.Point, rotation, scale, zOffset float64) Layer {
	out := make([]lattice.Point, len(points))
	copy(out, points)

	if rotation != 0 || scale != 1 {
		coords := make([]geom.Coord, len(out))
		for i, p := range out {
			coords[i] = p.Pos
		}
		center := geom.Centroid(coords)

		sin, cos := math.Sincos(rotation)
		for i := range out {
			rel := out[i].Pos.Sub(center)
			if rotation != 0 {
				rel = geom.Coord{
					X: rel.X*cos - rel.Y*sin,
					Y: rel.X*sin + rel.Y*cos,
					Z: rel.Z,
				}
			}
			if scale != 1 {
				rel = rel.Scale(scale)
			}
			out[i].Pos = center.Add(rel)
		}
	}

	if zOffset != 0 {
		for i := range out {
			out[i].Pos.Z += zOffset
		}
	}

	return Layer{Points: out, Rotation: rotation, Scale: scale, ZOffset: zOffset}
}
