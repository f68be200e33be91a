package dock

import (
	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
)

// Scratch holds every per-call working buffer the evaluator and the
// BFGS loop need: forward-kinematics frame origins/orientations/axes,
// per-atom world coordinates and derivatives, per-frame force/torque
// accumulators, and the output gradient. Its sizes are fixed by the
// ligand's frame/atom/variable counts, so a worker allocates one
// Scratch per optimization run and reuses it across every generation
// and every BFGS iteration within that run (spec §5's memory
// discipline), rather than allocating fresh slices on every call.
type Scratch struct {
	Origin []geom.Vec3
	Orient []geom.Quaternion
	Axis   []geom.Vec3

	Coord         []geom.Vec3
	HydrogenCoord []geom.Vec3
	Deriv         []geom.Vec3

	gForce  []geom.Vec3
	gTorque []geom.Vec3

	Gradient []float64

	// torsionIndex[k] is the active-torsion slot frame k writes its
	// projected torque into (x[7+torsionIndex[k]] / g[6+torsionIndex[k]]),
	// or -1 for the root and for inactive frames. It depends only on
	// which frames are active, which is fixed at parse time, so it is
	// computed once here rather than recomputed on every Evaluate call.
	torsionIndex []int
}

// NewScratch allocates a Scratch sized for lig.
func NewScratch(lig *molecule.Ligand) *Scratch {
	nf := lig.NumFrames
	s := &Scratch{
		Origin:        make([]geom.Vec3, nf),
		Orient:        make([]geom.Quaternion, nf),
		Axis:          make([]geom.Vec3, nf),
		Coord:         make([]geom.Vec3, lig.NumHeavyAtoms),
		HydrogenCoord: make([]geom.Vec3, lig.NumHydrogens),
		Deriv:         make([]geom.Vec3, lig.NumHeavyAtoms),
		gForce:        make([]geom.Vec3, nf),
		gTorque:       make([]geom.Vec3, nf),
		Gradient:      make([]float64, lig.NumGradient()),
		torsionIndex:  make([]int, nf),
	}

	s.torsionIndex[0] = -1
	t := 0
	for k := 1; k < nf; k++ {
		if lig.Frames[k].Active {
			s.torsionIndex[k] = t
			t++
		} else {
			s.torsionIndex[k] = -1
		}
	}
	return s
}
