// Package substrate stacks layers into one structure with contiguous residue
// and atom numbering, and exposes the single entry point for building a
// substrate from a construction request.
package substrate

import (
	"errors"

	"latgen/internal/lattice"
	"latgen/internal/layer"
	"latgen/internal/perturb"
	"latgen/pkg/geom"
	"latgen/pkg/rng"
)

// ErrNoLayers is returned when a build request names no layers.
var ErrNoLayers = errors.New("substrate: at least one layer is required")

// EmptySubstrateError reports that perturbation removed every atom. A
// substrate with zero atoms is never valid output.
type EmptySubstrateError struct {
	Residue string
}

func (e EmptySubstrateError) Error() string {
	return "substrate: all atoms of residue " + e.Residue + " were removed"
}

// Atom is one fully labeled atom of an assembled substrate.
type Atom struct {
	Pos     geom.Coord
	Name    string
	Element string
	Residue string
	// ResidueIndex is the 1-based index of the owning layer's residue.
	ResidueIndex int
	// Index is the 1-based atom number, contiguous within the substrate.
	Index int
}

// Substrate is an ordered stack of layers under one residue name.
type Substrate struct {
	Residue string
	Layers  []layer.Layer
	Atoms   []Atom
	Box     geom.Box
}

// LayerSpec describes the transform of one layer in the stack.
type LayerSpec struct {
	ZOffset  float64
	Rotation float64
	// Scale defaults to 1 when zero.
	Scale float64
}

// Assemble numbers the layers' atoms into a Substrate. Each layer receives
// the next residue index starting at 1; atom indices are contiguous in layer
// order starting at 1. Fails with EmptySubstrateError when no atoms remain.
func Assemble(layers []layer.Layer, residue string) (*Substrate, error) {
	total := 0
	for _, l := range layers {
		total += len(l.Points)
	}
	if total == 0 {
		return nil, EmptySubstrateError{Residue: residue}
	}

	atoms := make([]Atom, 0, total)
	coords := make([]geom.Coord, 0, total)
	for li, l := range layers {
		for _, p := range l.Points {
			atoms = append(atoms, Atom{
				Pos:          p.Pos,
				Name:         p.Name,
				Element:      p.Element,
				Residue:      residue,
				ResidueIndex: li + 1,
				Index:        len(atoms) + 1,
			})
			coords = append(coords, p.Pos)
		}
	}

	return &Substrate{
		Residue: residue,
		Layers:  layers,
		Atoms:   atoms,
		Box:     geom.BoundingBox(coords),
	}, nil
}

// Build replicates the cell over the extent, places and perturbs every layer
// and assembles the result. One draw stream seeded from seed is shared across
// the layers in order, so the whole substrate reproduces from its parameters.
// A failed build yields no partial output.
func Build(cell lattice.UnitCell, extent geom.Extent, policy lattice.Policy,
	layers []LayerSpec, pspec perturb.Spec, residue string, seed int64) (*Substrate, error) {

	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	points, _, err := lattice.Replicate(cell, extent, policy)
	if err != nil {
		return nil, err
	}

	stream := rng.New(seed)
	built := make([]layer.Layer, len(layers))
	for i, spec := range layers {
		scale := spec.Scale
		if scale == 0 {
			scale = 1
		}
		l := layer.Build(points, spec.Rotation, scale, spec.ZOffset)
		built[i] = perturb.Apply(l, pspec, stream)
	}

	return Assemble(built, residue)
}
