// Package geom holds the coordinate value types shared by every stage of the
// substrate pipeline.
package geom

import "math"

// Tol is the absolute tolerance used for coordinate comparisons. Two positions
// closer than this on every axis are the same lattice site.
const Tol = 1e-9

// Coord is a three-dimensional cartesian coordinate in nanometers.
type Coord struct {
	X, Y, Z float64
}

// Add returns the componentwise sum of two coordinates.
func (c Coord) Add(o Coord) Coord {
	return Coord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// Sub returns the componentwise difference of two coordinates.
func (c Coord) Sub(o Coord) Coord {
	return Coord{c.X - o.X, c.Y - o.Y, c.Z - o.Z}
}

// Scale returns the coordinate multiplied by a scalar.
func (c Coord) Scale(f float64) Coord {
	return Coord{c.X * f, c.Y * f, c.Z * f}
}

// Distance returns the euclidean distance between two coordinates.
func (c Coord) Distance(o Coord) float64 {
	d := c.Sub(o)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Eq reports whether two coordinates are equal within Tol on every axis.
func (c Coord) Eq(o Coord) bool {
	return math.Abs(c.X-o.X) < Tol &&
		math.Abs(c.Y-o.Y) < Tol &&
		math.Abs(c.Z-o.Z) < Tol
}

// Extent is a rectangular in-plane size request.
type Extent struct {
	X, Y float64
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Coord
}

// Size returns the box dimensions along each axis.
func (b Box) Size() Coord {
	return b.Max.Sub(b.Min)
}

// Union returns the smallest box containing both inputs.
func (b Box) Union(o Box) Box {
	return Box{
		Min: Coord{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Coord{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Pad grows the box by the given margin on every axis.
func (b Box) Pad(margin float64) Box {
	m := Coord{margin, margin, margin}
	return Box{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// BoundingBox computes the componentwise min/max box over the coordinates.
// The zero box is returned for an empty input.
func BoundingBox(coords []Coord) Box {
	if len(coords) == 0 {
		return Box{}
	}
	box := Box{Min: coords[0], Max: coords[0]}
	for _, c := range coords[1:] {
		box = box.Union(Box{Min: c, Max: c})
	}
	return box
}

// Centroid returns the arithmetic mean position of the coordinates.
// The origin is returned for an empty input.
func Centroid(coords []Coord) Coord {
	if len(coords) == 0 {
		return Coord{}
	}
	var sum Coord
	for _, c := range coords {
		sum = sum.Add(c)
	}
	return sum.Scale(1 / float64(len(coords)))
}
