// Package pdbqt implements the byte-level output contract of spec §6:
// each retained pose is written as a MODEL/ENDMDL block, with a REMARK
// line carrying the predicted free energy and every original
// ATOM/HETATM line rewritten in place with new coordinates and a zero
// occupancy/temperature placeholder in columns [70,76), leaving every
// other column (and every non-atom record) untouched.
package pdbqt

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
)

// WriteModel appends one MODEL block to w: a REMARK line with energy,
// the ligand's original lines with ATOM/HETATM coordinate columns
// rewritten from heavyCoords/hydrogenCoords (in the order those atoms
// were encountered while parsing), and ENDMDL.
func WriteModel(w io.Writer, modelNum int, energy float64, lig *molecule.Ligand, heavyCoords, hydrogenCoords []geom.Vec3) error {
	if _, err := fmt.Fprintf(w, "MODEL %d\n", modelNum); err != nil {
		return fmt.Errorf("pdbqt: writing MODEL record: %w", err)
	}
	if _, err := fmt.Fprintf(w, "REMARK %8.3f KCAL/MOL\n", energy); err != nil {
		return fmt.Errorf("pdbqt: writing REMARK record: %w", err)
	}

	heavyIdx, hydrogenIdx := 0, 0
	for _, line := range lig.Lines {
		out := line
		if isAtomRecord(line) && len(line) >= 78 {
			isHydrogen := molecule.IsHydrogenTypeCode(line[76:78])
			var c geom.Vec3
			if isHydrogen {
				if hydrogenIdx < len(hydrogenCoords) {
					c = hydrogenCoords[hydrogenIdx]
				}
				hydrogenIdx++
			} else {
				if heavyIdx < len(heavyCoords) {
					c = heavyCoords[heavyIdx]
				}
				heavyIdx++
			}
			out = rewriteCoordinates(line, c)
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return fmt.Errorf("pdbqt: writing record: %w", err)
		}
	}

	if _, err := fmt.Fprintln(w, "ENDMDL"); err != nil {
		return fmt.Errorf("pdbqt: writing ENDMDL record: %w", err)
	}
	return nil
}

func isAtomRecord(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

// rewriteCoordinates replaces columns [30,54) with c's three %8.3f
// fields and columns [70,76) with a zero occupancy/temperature
// placeholder, leaving every other column of line untouched.
func rewriteCoordinates(line string, c geom.Vec3) string {
	var b strings.Builder
	b.WriteString(line[:30])
	fmt.Fprintf(&b, "%8.3f%8.3f%8.3f", c.X, c.Y, c.Z)
	b.WriteString(line[54:70])
	b.WriteString(" 0    ")
	b.WriteString(line[76:])
	return b.String()
}
