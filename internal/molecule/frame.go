package molecule

import "github.com/sarat-asymmetrica/ligandock/internal/geom"

// Frame is one rigid-body node of the ligand's torsion tree. Frames
// are stored in a flat, DFS-ordered array (frame 0 is ROOT); every
// non-root frame's Parent index is strictly smaller than its own
// index, which lets forward kinematics visit frames in index order
// and gradient aggregation visit them in reverse.
type Frame struct {
	Parent int // index of the parent frame; 0 for ROOT (self-sentinel)

	RotorXSerial int // input-file serial of the parent-side rotor atom
	RotorYSerial int // input-file serial of the child-side rotor atom
	RotorXIndex  int // index into Ligand.Heavy; belongs to the parent frame
	RotorYIndex  int // index into Ligand.Heavy; belongs to this frame

	HeavyBegin, HeavyEnd         int // half-open range into Ligand.Heavy
	HydrogenBegin, HydrogenEnd   int // half-open range into Ligand.Hydrogens

	Branches []int // child frame indices, in the order opened

	// Active is false when this frame carries no effective torsional
	// degree of freedom: it owns only RotorY plus hydrogens (e.g. -OH,
	// -NH2), whose rotation cannot change the scored energy.
	Active bool

	// ParentRotorYToCurrentRotorY is the vector from the parent
	// frame's rotor-Y to this frame's rotor-Y, in parent-local
	// coordinates: the translation forward kinematics rotates by the
	// parent's orientation to place this frame's origin.
	ParentRotorYToCurrentRotorY geom.Vec3

	// ParentRotorXToCurrentRotorY is the unit vector along the rotor
	// axis, in parent-local coordinates: the rotation axis for this
	// frame's torsion.
	ParentRotorXToCurrentRotorY geom.Vec3
}

// IsRoot reports whether f is the ROOT frame.
func (f *Frame) IsRoot(index int) bool {
	return index == 0
}

// NumHeavy returns the number of heavy atoms owned by this frame.
func (f *Frame) NumHeavy() int {
	return f.HeavyEnd - f.HeavyBegin
}

// NumHydrogens returns the number of hydrogens owned by this frame.
func (f *Frame) NumHydrogens() int {
	return f.HydrogenEnd - f.HydrogenBegin
}
