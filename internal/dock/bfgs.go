package dock

import (
	"math"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
	"github.com/sarat-asymmetrica/ligandock/internal/receptor"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

// numAlphas is the number of step sizes the line search tries before
// giving up on an iteration (spec §4.4).
const numAlphas = 5

// armijoC1 is the sufficient-decrease constant in the line search's
// Armijo upper bound ue = e1 + armijoC1*alpha*pg1.
const armijoC1 = 0.0001

// curvatureC2 is the curvature-condition threshold: a trial step is
// accepted only if pg2 >= curvatureC2*pg1.
const curvatureC2 = 0.9

// runBFGS drives x1 to a local minimum by line-searched BFGS with a
// packed-upper-triangular approximate inverse Hessian, reinitialized
// to the identity at the start of every call. It mutates x1 in place
// and returns the final energy; it never errors — a line search that
// cannot find an acceptable step simply ends the local search early,
// per spec §7.
func runBFGS(lig *molecule.Ligand, sf scoring.Function, rec receptor.Receptor, x1 []float64, maxIterations int, s *Scratch) float64 {
	gdim := lig.NumGradient()
	h := NewIdentityHessian(gdim)

	e1, ok := Evaluate(lig, sf, rec, x1, math.Inf(1), s)
	if !ok {
		return e1
	}
	g1 := append([]float64(nil), s.Gradient...)

	p := make([]float64, gdim)
	hg := make([]float64, gdim)
	mhy := make([]float64, gdim)
	y := make([]float64, gdim)
	x2 := make([]float64, len(x1))

	for iter := 0; iter < maxIterations; iter++ {
		h.MulVec(g1, hg)
		for i := range p {
			p[i] = -hg[i]
		}
		pg1 := dot(p, g1)
		if pg1 >= 0 {
			break // not a descent direction; numerically degenerate Hessian
		}

		alpha := 1.0
		var e2 float64
		var g2 []float64
		accepted := false

		for attempt := 0; attempt < numAlphas; attempt++ {
			buildTrial(x1, p, alpha, x2)
			ue := e1 + armijoC1*alpha*pg1

			e2Try, ok2 := Evaluate(lig, sf, rec, x2, ue, s)
			if ok2 {
				pg2 := dot(p, s.Gradient)
				if pg2 >= curvatureC2*pg1 {
					e2 = e2Try
					g2 = append([]float64(nil), s.Gradient...)
					accepted = true
					break
				}
			}
			alpha *= 0.1
		}
		if !accepted {
			break
		}

		for i := range y {
			y[i] = g2[i] - g1[i]
		}
		h.MulVec(y, mhy)
		for i := range mhy {
			mhy[i] = -mhy[i]
		}
		yhy := -dot(y, mhy)
		yp := dot(y, p)
		if yp == 0 {
			break // curvature condition guarantees yp>0; guard against FP underflow
		}
		ryp := 1 / yp
		pco := ryp * (ryp*yhy + alpha)

		for i := 0; i < gdim; i++ {
			for j := i; j < gdim; j++ {
				h.Add(i, j, ryp*(mhy[i]*p[j]+mhy[j]*p[i])+pco*p[i]*p[j])
			}
		}

		copy(x1, x2)
		e1 = e2
		g1 = g2
	}

	return e1
}

// buildTrial writes x1 + alpha*p into out, following the position /
// quaternion / torsion update rules of spec §4.4.
func buildTrial(x1, p []float64, alpha float64, out []float64) {
	out[0] = x1[0] + alpha*p[0]
	out[1] = x1[1] + alpha*p[1]
	out[2] = x1[2] + alpha*p[2]

	rotvec := geom.Vec3{X: alpha * p[3], Y: alpha * p[4], Z: alpha * p[5]}
	dq := geom.RotationVectorToQuat(rotvec)
	q1 := geom.Quaternion{W: x1[3], X: x1[4], Y: x1[5], Z: x1[6]}
	q2 := dq.Mul(q1).Normalize()
	out[3], out[4], out[5], out[6] = q2.W, q2.X, q2.Y, q2.Z

	for i := 7; i < len(x1); i++ {
		out[i] = x1[i] + alpha*p[i-1]
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
