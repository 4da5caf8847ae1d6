package lattice

import (
	"math"

	"latgen/pkg/geom"
)

// Policy selects how the replicated extent relates to the requested one.
type Policy string

const (
	// PolicyAtLeast rounds cell counts up so the replicated extent covers
	// the request on both axes. It never fails on extent grounds.
	PolicyAtLeast Policy = "at-least"
	// PolicyExactFit requires the nearest periodic extent to match the
	// request within tolerance and fails with ExtentMismatchError otherwise.
	PolicyExactFit Policy = "exact-fit"
)

// Point is one replicated atom instance.
type Point struct {
	Pos     geom.Coord
	Name    string
	Element string
	// Cell is the (i, j) index of the owning cell.
	Cell [2]int
}

// Replicate tiles the unit cell across the requested extent and returns the
// deduplicated atom instances in row-major (i, j) order together with the
// periodic box the replicas span. It is a pure function.
func Replicate(cell UnitCell, extent geom.Extent, policy Policy) ([]Point, geom.Box, error) {
	if extent.X <= 0 || extent.Y <= 0 {
		return nil, geom.Box{}, ErrNonPositiveExtent
	}

	dx, dy, _ := cell.spacing()

	var nx, ny int
	switch policy {
	case PolicyExactFit:
		nx = int(math.Round(extent.X / dx))
		ny = int(math.Round(extent.Y / dy))
	default:
		nx = int(math.Ceil(extent.X / dx))
		ny = int(math.Ceil(extent.Y / dy))
	}
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	// Honeycomb periodicity: every third grid point is skipped and the skip
	// shifts by one per row, so perfect replicas need column counts in
	// multiples of 3 and row counts in multiples of 2.
	if cell.kind == Hexagonal {
		nx = int(math.Ceil(float64(nx)/3)) * 3
		ny = int(math.Ceil(float64(ny)/2)) * 2
	}

	achieved := geom.Extent{X: float64(nx) * dx, Y: float64(ny) * dy}
	if policy == PolicyExactFit {
		if math.Abs(achieved.X-extent.X) > geom.Tol || math.Abs(achieved.Y-extent.Y) > geom.Tol {
			return nil, geom.Box{}, ExtentMismatchError{Requested: extent, Achievable: achieved}
		}
	}

	points := make([]Point, 0, nx*ny*len(cell.templates))
	seen := make(map[[3]int64]struct{}, nx*ny*len(cell.templates))
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			if cell.kind == Hexagonal && (i+j+1)%3 == 0 {
				continue
			}
			for _, t := range cell.templates {
				x, y := cell.FracToCart(float64(i)+t.U, float64(j)+t.V)
				pos := geom.Coord{X: x, Y: y, Z: t.Z}
				// Quantize at 1e-6 nm: seam duplicates collapse into one
				// key while distinct lattice sites sit orders of magnitude
				// further apart. First occurrence wins.
				key := [3]int64{quantize(pos.X), quantize(pos.Y), quantize(pos.Z)}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				points = append(points, Point{Pos: pos, Name: t.Name, Element: t.Element, Cell: [2]int{i, j}})
			}
		}
	}

	box := geom.Box{Max: geom.Coord{X: achieved.X, Y: achieved.Y}}
	return points, box, nil
}

func quantize(v float64) int64 {
	return int64(math.Round(v * 1e6))
}
