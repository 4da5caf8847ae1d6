// Package export serializes a merged system to molecular-dynamics structure
// formats. The core defines the data shape; this package owns the on-disk
// encoding.
package export

import (
	"bufio"
	"fmt"
	"io"

	"latgen/internal/system"
)

// WriteGRO writes the system as a GROMOS87 formatted structure file: a title
// line, the atom count, one fixed-width record per atom and the box
// dimensions. Atom and residue numbers wrap after five digits as the format
// requires, and are written 1-based.
func WriteGRO(w io.Writer, sys *system.System, title string) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "%s\n%d\n", title, len(sys.Atoms)); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	for _, a := range sys.Atoms {
		_, err := fmt.Fprintf(bw, "%5d%-5s%5s%5d%8.3f%8.3f%8.3f\n",
			a.ResidueIndex%100000,
			a.Residue,
			a.Name,
			a.Index%100000,
			a.Pos.X, a.Pos.Y, a.Pos.Z)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	size := sys.Box.Size()
	if _, err := fmt.Fprintf(bw, "%12.8f %12.8f %12.8f\n", size.X, size.Y, size.Z); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return bw.Flush()
}
