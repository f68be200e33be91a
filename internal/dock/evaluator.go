// Package dock implements the evaluator and BFGS/Metropolis optimizer
// described in spec §4.3-§4.4: forward kinematics plus a first-order
// grid lookup (the probe value at the atom's lower-corner cell, with
// forward-difference spatial derivatives) plus intra-ligand pair
// potentials produce energy and an analytic gradient from a single
// pass; a Metropolis outer loop wraps a line-searched BFGS local
// minimizer around repeated random perturbations of the best pose.
package dock

import (
	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
	"github.com/sarat-asymmetrica/ligandock/internal/receptor"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

// boxPenalty is the soft-wall energy contribution for a heavy atom
// that has left the receptor's probe box (spec §4.3).
const boxPenalty = 10.0

// forwardKinematics walks the frame tree in index order, placing every
// frame's origin/orientation and every heavy atom's and hydrogen's
// world coordinate. It is shared by Evaluate (which only needs heavy
// atoms) and ComposeResult (which also needs hydrogens for output).
func forwardKinematics(lig *molecule.Ligand, x []float64, s *Scratch) {
	s.Origin[0] = geom.Vec3{X: x[0], Y: x[1], Z: x[2]}
	s.Orient[0] = geom.Quaternion{W: x[3], X: x[4], Y: x[5], Z: x[6]}

	for k := 0; k < lig.NumFrames; k++ {
		f := &lig.Frames[k]
		m := s.Orient[k].ToMat3()

		for i := f.HeavyBegin; i < f.HeavyEnd; i++ {
			s.Coord[i] = s.Origin[k].Add(m.Apply(lig.Heavy[i].Coord))
		}
		for i := f.HydrogenBegin; i < f.HydrogenEnd; i++ {
			s.HydrogenCoord[i] = s.Origin[k].Add(m.Apply(lig.Hydrogens[i].Coord))
		}

		for _, b := range f.Branches {
			child := &lig.Frames[b]
			s.Origin[b] = s.Origin[k].Add(m.Apply(child.ParentRotorYToCurrentRotorY))

			if child.Active {
				axis := m.Apply(child.ParentRotorXToCurrentRotorY)
				s.Axis[b] = axis
				t := s.torsionIndex[b]
				rot := geom.AxisAngleToQuat(axis, x[7+t])
				s.Orient[b] = rot.Mul(s.Orient[k]).Normalize()
			} else {
				s.Orient[b] = s.Orient[k]
			}
		}
	}
}

// Evaluate computes the total energy and, if it stays under ue,
// the analytic gradient for conformation x. ok is false when the
// energy meets or exceeds ue, in which case Gradient is not updated
// and the caller (the BFGS line search) should not trust it — this is
// the early-exit Armijo mechanism of spec §4.3, not an error.
func Evaluate(lig *molecule.Ligand, sf scoring.Function, rec receptor.Receptor, x []float64, ue float64, s *Scratch) (energy float64, ok bool) {
	forwardKinematics(lig, x, s)

	for i := range s.Deriv {
		s.Deriv[i] = geom.Vec3{}
	}

	gi := rec.GranularityInverse()
	for i := range lig.Heavy {
		c := s.Coord[i]
		if !rec.Within(c) {
			energy += boxPenalty
			continue
		}
		xs := lig.Heavy[i].XSType
		ix, iy, iz := rec.CoordinateToIndex(c)
		e000 := rec.Value(xs, ix, iy, iz)
		e100 := rec.Value(xs, ix+1, iy, iz)
		e010 := rec.Value(xs, ix, iy+1, iz)
		e001 := rec.Value(xs, ix, iy, iz+1)
		energy += e000
		s.Deriv[i] = geom.Vec3{
			X: (e100 - e000) * gi,
			Y: (e010 - e000) * gi,
			Z: (e001 - e000) * gi,
		}
	}

	cutoff := sf.CutoffSqr()
	ns := float64(sf.NS())
	for _, p := range lig.Pairs {
		r := s.Coord[p.J].Sub(s.Coord[p.I])
		r2 := r.Norm2()
		if r2 >= cutoff {
			continue
		}
		o := p.POffset + int(ns*r2)
		energy += sf.Energy(o)
		correction := r.Scale(sf.DerivativeFactor(o))
		s.Deriv[p.I] = s.Deriv[p.I].Sub(correction)
		s.Deriv[p.J] = s.Deriv[p.J].Add(correction)
	}

	if energy >= ue {
		return energy, false
	}

	aggregateGradient(lig, s)
	return energy, true
}

// aggregateGradient back-propagates per-atom derivatives into the
// force/torque on ROOT and the projected torque on every active
// torsion, walking frames in reverse index order (children before
// parents) per spec §4.3.
func aggregateGradient(lig *molecule.Ligand, s *Scratch) {
	for k := 0; k < lig.NumFrames; k++ {
		s.gForce[k] = geom.Vec3{}
		s.gTorque[k] = geom.Vec3{}
	}

	for k := lig.NumFrames - 1; k >= 1; k-- {
		f := &lig.Frames[k]
		for i := f.HeavyBegin; i < f.HeavyEnd; i++ {
			s.gForce[k] = s.gForce[k].Add(s.Deriv[i])
			s.gTorque[k] = s.gTorque[k].Add(s.Coord[i].Sub(s.Origin[k]).Cross(s.Deriv[i]))
		}

		parent := f.Parent
		s.gForce[parent] = s.gForce[parent].Add(s.gForce[k])
		s.gTorque[parent] = s.gTorque[parent].
			Add(s.gTorque[k]).
			Add(s.Origin[k].Sub(s.Origin[parent]).Cross(s.gForce[k]))

		if f.Active {
			t := s.torsionIndex[k]
			s.Gradient[6+t] = s.gTorque[k].Dot(s.Axis[k])
		}
	}

	root := &lig.Frames[0]
	for i := root.HeavyBegin; i < root.HeavyEnd; i++ {
		s.gForce[0] = s.gForce[0].Add(s.Deriv[i])
		s.gTorque[0] = s.gTorque[0].Add(s.Coord[i].Sub(s.Origin[0]).Cross(s.Deriv[i]))
	}

	s.Gradient[0], s.Gradient[1], s.Gradient[2] = s.gForce[0].X, s.gForce[0].Y, s.gForce[0].Z
	s.Gradient[3], s.Gradient[4], s.Gradient[5] = s.gTorque[0].X, s.gTorque[0].Y, s.gTorque[0].Z
}

// ComposeResult replays forward kinematics for conformation x and
// returns the world coordinates of every heavy atom and hydrogen, the
// final pass the optimizer uses to report a retained pose (spec §4.4).
func ComposeResult(lig *molecule.Ligand, x []float64, s *Scratch) (heavy []geom.Vec3, hydrogens []geom.Vec3) {
	forwardKinematics(lig, x, s)
	heavy = make([]geom.Vec3, len(s.Coord))
	copy(heavy, s.Coord)
	hydrogens = make([]geom.Vec3, len(s.HydrogenCoord))
	copy(hydrogens, s.HydrogenCoord)
	return heavy, hydrogens
}
