// Package system merges substrates into one simulation-ready coordinate
// system with globally unique numbering and an overall box.
package system

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"latgen/internal/substrate"
	"latgen/pkg/geom"
)

// ErrNoSubstrates is returned when merging an empty substrate list; with
// nothing to number from there is no valid System.
var ErrNoSubstrates = errors.New("system: no substrates to merge")

// Options configures a merge.
type Options struct {
	// BoxPadding grows the simulation box by this margin on every axis.
	BoxPadding float64
	// MinSeparation is the distance below which an atom pair is reported as
	// overlapping. Zero or negative disables the scan.
	MinSeparation float64
}

// OverlapWarning records one atom pair closer than the minimum separation.
// It is informational: the atoms are kept and the merge succeeds.
type OverlapWarning struct {
	IndexA, IndexB int
	A, B           geom.Coord
	Distance       float64
}

func (w OverlapWarning) String() string {
	return fmt.Sprintf("atoms %d and %d overlap: %.4g nm apart", w.IndexA, w.IndexB, w.Distance)
}

// System is the merged, read-only output of the pipeline.
type System struct {
	Atoms    []substrate.Atom
	Box      geom.Box
	Warnings []OverlapWarning
}

// Merge concatenates the substrates in input order, renumbering atoms and
// residues to be globally unique and contiguous. The box is the union of the
// substrate boxes padded by the configured margin. Substrates are never
// reordered.
func Merge(subs []*substrate.Substrate, opts Options) (*System, error) {
	if len(subs) == 0 {
		return nil, ErrNoSubstrates
	}

	total := 0
	for _, s := range subs {
		total += len(s.Atoms)
	}

	atoms := make([]substrate.Atom, 0, total)
	box := subs[0].Box
	residueOffset := 0
	for _, s := range subs {
		box = box.Union(s.Box)
		maxResidue := 0
		for _, a := range s.Atoms {
			a.Index = len(atoms) + 1
			a.ResidueIndex += residueOffset
			if a.ResidueIndex-residueOffset > maxResidue {
				maxResidue = a.ResidueIndex - residueOffset
			}
			atoms = append(atoms, a)
		}
		residueOffset += maxResidue
	}

	sys := &System{Atoms: atoms, Box: box.Pad(opts.BoxPadding)}
	if opts.MinSeparation > 0 {
		sys.Warnings = findOverlaps(atoms, opts.MinSeparation)
	}
	return sys, nil
}

// BoxFromAtoms recomputes the tight bounding box over the merged atoms. It is
// slice-wise on purpose so callers can compare the stored (substrate-union)
// box against the actual occupancy.
func (s *System) BoxFromAtoms() geom.Box {
	if len(s.Atoms) == 0 {
		return geom.Box{}
	}
	xs := make([]float64, len(s.Atoms))
	ys := make([]float64, len(s.Atoms))
	zs := make([]float64, len(s.Atoms))
	for i, a := range s.Atoms {
		xs[i], ys[i], zs[i] = a.Pos.X, a.Pos.Y, a.Pos.Z
	}
	return geom.Box{
		Min: geom.Coord{X: floats.Min(xs), Y: floats.Min(ys), Z: floats.Min(zs)},
		Max: geom.Coord{X: floats.Max(xs), Y: floats.Max(ys), Z: floats.Max(zs)},
	}
}

// findOverlaps buckets atoms into voxels of minSep side length so only the 27
// neighboring buckets of each atom need checking. Near-linear for the sparse
// occupancies a physical lattice produces.
func findOverlaps(atoms []substrate.Atom, minSep float64) []OverlapWarning {
	type voxel [3]int
	buckets := make(map[voxel][]int, len(atoms))
	key := func(c geom.Coord) voxel {
		return voxel{
			int(math.Floor(c.X / minSep)),
			int(math.Floor(c.Y / minSep)),
			int(math.Floor(c.Z / minSep)),
		}
	}

	var warnings []OverlapWarning
	for i, a := range atoms {
		k := key(a.Pos)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, j := range buckets[voxel{k[0] + dx, k[1] + dy, k[2] + dz}] {
						d := a.Pos.Distance(atoms[j].Pos)
						if d < minSep {
							warnings = append(warnings, OverlapWarning{
								IndexA:   atoms[j].Index,
								IndexB:   a.Index,
								A:        atoms[j].Pos,
								B:        a.Pos,
								Distance: d,
							})
						}
					}
				}
			}
		}
		buckets[k] = append(buckets[k], i)
	}
	return warnings
}
