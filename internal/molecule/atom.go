package molecule

import (
	"strings"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
)

// elementInfo captures the per-element-type properties the parser
// needs: the covalent radius used for bond perception, the xs-type
// index used as a key into grid maps and pair-potential tables, and
// the classification flags carried on every Atom built from it.
//
// xs types and radii follow the standard AutoDock/Vina atom-typing
// scheme for organic small molecules; this is intentionally not
// exhaustive (see SPEC_FULL.md — atom/element classification is an
// out-of-scope external collaborator, referenced here only by the
// minimal table the parser needs to build a working Ligand).
type elementInfo struct {
	xsType       int
	covalentRad  float64
	isHydrogen   bool
	isHetero     bool
	isHydrophobe bool
	isPolarH     bool
	isDonorHetero bool // N/O capable of donating through a bonded polar H
}

// atomTypeTable maps the PDBQT column-77/78 type code to its element
// classification. Index order is also the xs-type index.
var atomTypeTable = map[string]elementInfo{
	"C":  {xsType: 0, covalentRad: 0.77, isHydrophobe: true},
	"A":  {xsType: 1, covalentRad: 0.77, isHydrophobe: true}, // aromatic carbon
	"N":  {xsType: 2, covalentRad: 0.75, isHetero: true, isDonorHetero: true},
	"NA": {xsType: 3, covalentRad: 0.75, isHetero: true, isDonorHetero: true},
	"OA": {xsType: 4, covalentRad: 0.73, isHetero: true, isDonorHetero: true},
	"O":  {xsType: 5, covalentRad: 0.73, isHetero: true, isDonorHetero: true},
	"S":  {xsType: 6, covalentRad: 1.02, isHetero: true},
	"SA": {xsType: 7, covalentRad: 1.02, isHetero: true},
	"P":  {xsType: 8, covalentRad: 1.06, isHetero: true},
	"F":  {xsType: 9, covalentRad: 0.71, isHetero: true, isHydrophobe: true},
	"Cl": {xsType: 10, covalentRad: 0.99, isHetero: true, isHydrophobe: true},
	"Br": {xsType: 11, covalentRad: 1.14, isHetero: true, isHydrophobe: true},
	"I":  {xsType: 12, covalentRad: 1.33, isHetero: true, isHydrophobe: true},
	"HD": {xsType: 13, covalentRad: 0.37, isHydrogen: true, isPolarH: true},
	"H":  {xsType: 14, covalentRad: 0.37, isHydrogen: true},
}

// NumXSTypes is the number of distinct xs-type indices in atomTypeTable,
// i.e. the key space grid maps and pair-potential tables are indexed
// over.
const NumXSTypes = 15

// Atom is a single atom of the ligand.
type Atom struct {
	Serial  int      // atom serial number as read from the input file
	Coord   geom.Vec3 // world coordinate at parse time; frame-local after construction
	XSType  int
	CovalentRadius float64

	IsHydrogen    bool
	IsHetero      bool
	IsHydrophobic bool
	IsPolarH      bool
	IsDonor       bool // set on a hetero atom once a bonded polar H is found
}

// newAtom classifies typeCode (the PDBQT column-77/78 code) and builds
// an Atom at the given serial/coordinate. ok is false for an
// unrecognized type code, in which case the caller stores the line
// verbatim but skips it for topology, per spec §4.2.
func newAtom(serial int, coord geom.Vec3, typeCode string) (Atom, bool) {
	info, ok := atomTypeTable[strings.TrimSpace(typeCode)]
	if !ok {
		return Atom{}, false
	}
	return Atom{
		Serial:         serial,
		Coord:          coord,
		XSType:         info.xsType,
		CovalentRadius: info.covalentRad,
		IsHydrogen:     info.isHydrogen,
		IsHetero:       info.isHetero,
		IsHydrophobic:  info.isHydrophobe,
		IsPolarH:       info.isPolarH,
	}, true
}

// IsHydrogenTypeCode reports whether typeCode (the PDBQT column-77/78
// code) classifies as a hydrogen, mirroring newAtom's classification.
// Used by the pdbqt writer to dispatch a rewritten record into the
// same heavy/hydrogen coordinate stream the parser built it from,
// since the code occupies columns [76:78), not a single column.
func IsHydrogenTypeCode(typeCode string) bool {
	info, ok := atomTypeTable[strings.TrimSpace(typeCode)]
	return ok && info.isHydrogen
}

// covalentCutoff2 returns the squared distance below which a and b are
// considered covalently bonded: the sum of their covalent radii plus a
// small tolerance, following the standard "sum of radii + 0.4 Å" rule
// used by AutoDock-family bond perception.
func covalentCutoff2(a, b Atom) float64 {
	d := a.CovalentRadius + b.CovalentRadius + 0.4
	return d * d
}
