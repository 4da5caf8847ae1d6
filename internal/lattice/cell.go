// Package lattice defines crystallographic unit cells and replicates them
// across a requested extent into concrete atom positions.
package lattice

import (
	"math"

	"latgen/pkg/geom"
)

// Kind enumerates the supported unit-cell bases.
type Kind string

const (
	// Hexagonal cells have a common vector length and a 120 degree angle.
	// Replication skips every third grid point to form the honeycomb.
	Hexagonal Kind = "hexagonal"
	// Triclinic cells have two vectors of length (a, b) separated by gamma.
	Triclinic Kind = "triclinic"
)

// AtomTemplate is one atom of the cell basis. U and V are fractional
// coordinates along the in-plane basis vectors. The basis is strictly
// in-plane, so Z is a plain cartesian offset in nm rather than a fraction.
type AtomTemplate struct {
	Name    string
	Element string
	U, V    float64
	Z       float64
}

// UnitCell is an immutable crystallographic basis: two in-plane lattice
// vectors plus the atom templates replicated at every grid point.
type UnitCell struct {
	kind      Kind
	a, b      float64
	gamma     float64
	templates []AtomTemplate
}

// NewHexagonal constructs a honeycomb cell with bond spacing a.
func NewHexagonal(a float64, templates ...AtomTemplate) (UnitCell, error) {
	return newCell(Hexagonal, a, a, 2*math.Pi/3, templates)
}

// NewTriclinic constructs a cell with vector lengths (a, b) separated by the
// angle gamma in radians.
func NewTriclinic(a, b, gamma float64, templates ...AtomTemplate) (UnitCell, error) {
	return newCell(Triclinic, a, b, gamma, templates)
}

func newCell(kind Kind, a, b, gamma float64, templates []AtomTemplate) (UnitCell, error) {
	if a <= 0 || b <= 0 {
		return UnitCell{}, InvalidLatticeError{Reason: "basis vector lengths must be positive"}
	}
	// The cross product of the basis vectors is a*b*sin(gamma); a vanishing
	// sine means a degenerate (collinear) cell.
	if math.Abs(math.Sin(gamma)) < geom.Tol {
		return UnitCell{}, InvalidLatticeError{Reason: "basis vectors are collinear"}
	}
	if len(templates) == 0 {
		return UnitCell{}, InvalidLatticeError{Reason: "cell has no atom templates"}
	}
	cell := UnitCell{kind: kind, a: a, b: b, gamma: gamma, templates: make([]AtomTemplate, len(templates))}
	copy(cell.templates, templates)
	return cell, nil
}

// Kind returns the cell kind.
func (c UnitCell) Kind() Kind { return c.kind }

// Basis returns the basis vector lengths and their angle in radians.
func (c UnitCell) Basis() (a, b, gamma float64) { return c.a, c.b, c.gamma }

// Templates returns a copy of the cell's atom templates.
func (c UnitCell) Templates() []AtomTemplate {
	out := make([]AtomTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// FracToCart converts fractional coordinates along the basis vectors to
// in-plane cartesian coordinates.
func (c UnitCell) FracToCart(u, v float64) (x, y float64) {
	dx, dy, rowShift := c.spacing()
	return u*dx + v*rowShift, v * dy
}

// spacing returns the column spacing, row spacing and the per-row x shift.
func (c UnitCell) spacing() (dx, dy, rowShift float64) {
	return c.a, c.b * math.Sin(c.gamma), c.b * math.Cos(c.gamma)
}
