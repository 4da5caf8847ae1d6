package lattice

import (
	"errors"
	"fmt"

	"latgen/pkg/geom"
)

// ErrNonPositiveExtent is returned when a requested extent is not positive on
// both axes.
var ErrNonPositiveExtent = errors.New("lattice: extent must be positive on both axes")

// InvalidLatticeError reports a degenerate unit-cell basis.
type InvalidLatticeError struct {
	Reason string
}

func (e InvalidLatticeError) Error() string {
	return "lattice: invalid unit cell: " + e.Reason
}

// ExtentMismatchError reports that an exact-fit replication cannot match the
// requested extent. Achievable holds the nearest periodic extent so callers
// can retry with it or fall back to the at-least policy.
type ExtentMismatchError struct {
	Requested  geom.Extent
	Achievable geom.Extent
}

func (e ExtentMismatchError) Error() string {
	return fmt.Sprintf("lattice: exact fit unsatisfiable: requested %.6g x %.6g nm, achievable %.6g x %.6g nm",
		e.Requested.X, e.Requested.Y, e.Achievable.X, e.Achievable.Y)
}
