package molecule

// InteractingPair is a scored intra-ligand atom pair: i and j are
// heavy-atom indices (i<j) separated by more than three covalent
// bonds and not excluded by rotor-adjacency, and POffset is the
// precomputed base index into the scoring function's tabulated
// energy/derivative arrays for this pair's xs-type combination.
type InteractingPair struct {
	I, J    int
	POffset int
}

// Ligand is the immutable, parsed representation of a flexible
// small-molecule structure: an ordered array of heavy atoms, an
// ordered array of hydrogens, a tree of frames connected by rotatable
// bonds, the list of intra-ligand interacting pairs, and the original
// input lines (for coordinate-column rewriting on output).
//
// A Ligand is constructed once by Parse and is read-only thereafter;
// nothing in this package or internal/dock mutates it after
// construction.
type Ligand struct {
	Heavy     []Atom
	Hydrogens []Atom
	Frames    []Frame
	Pairs     []InteractingPair

	// Lines caches the original input lines verbatim, in file order,
	// for PDBQT output rewriting.
	Lines []string

	NumHeavyAtoms        int
	NumHydrogens         int
	NumFrames            int
	NumTorsions          int
	NumActiveTorsions    int
	NumHeavyAtomsInverse float64
}

// NumVariables returns the length of the conformation vector x this
// ligand requires: 7 (position + orientation quaternion) plus one
// torsion parameter per active torsion.
func (l *Ligand) NumVariables() int {
	return 7 + l.NumActiveTorsions
}

// NumGradient returns the length of the gradient vector g this
// ligand's evaluator produces: 6 (force + torque on ROOT) plus one
// projected torque per active torsion.
func (l *Ligand) NumGradient() int {
	return 6 + l.NumActiveTorsions
}
