package dock

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
	"github.com/sarat-asymmetrica/ligandock/internal/receptor"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

// atomLine/branchLine/endBranchLine duplicate the molecule package's
// test fixtures builders: they are unexported there, and the dock
// package needs parsed ligands of its own to exercise the evaluator.
func atomLine(serial int, x, y, z float64, typeCode string) string {
	head := fmt.Sprintf("%-6s%5d", "ATOM", serial)
	head += strings.Repeat(" ", 30-len(head))
	head += fmt.Sprintf("%8.3f%8.3f%8.3f", x, y, z)
	head += strings.Repeat(" ", 70-len(head))
	head += strings.Repeat(" ", 6)
	head += fmt.Sprintf("%2s", typeCode)
	return head
}

func branchLine(x, y int) string {
	return fmt.Sprintf("%-6s%4d%4d", "BRANCH", x, y)
}

func endBranchLine(x, y int) string {
	return fmt.Sprintf("%-9s%4d%4d", "ENDBRANCH", x, y)
}

func parseTestLigand(t *testing.T, text string, sf scoring.Function) *molecule.Ligand {
	t.Helper()
	lig, err := molecule.Parse(strings.NewReader(text), "test.pdbqt", sf)
	require.NoError(t, err)
	return lig
}

func singleAtomLigandText() string {
	return strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		"TORSDOF 0",
	}, "\n")
}

// chainLigandText is a three-frame ligand (root - C2/C3 - C5/C6) whose
// bond-graph path (1-2-3-5-6) leaves exactly one admitted interacting
// pair after the rotor-adjacency and bond-depth exclusions of spec
// §4.2 — atom1 and atom6 — which is what the pair-potential gradient
// and rotation-invariance tests below exercise.
func chainLigandText() string {
	return strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.4, 0, 0, "C"),
		atomLine(3, 2.1, 1.2, 0, "C"),
		branchLine(3, 5),
		atomLine(5, 3.5, 0.8, 0, "C"),
		atomLine(6, 4.3, 1.8, 0, "C"),
		endBranchLine(3, 5),
		endBranchLine(1, 2),
		"TORSDOF 2",
	}, "\n")
}

func hydroxylLigandText() string {
	return strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.4, 0, 0, "OA"),
		atomLine(3, 2.1, 0.5, 0, "HD"),
		endBranchLine(1, 2),
		"TORSDOF 1",
	}, "\n")
}

// analyticPairFunction is a table-free scoring.Function stand-in for
// tests that need a smooth, differentiable pair potential: PairIndex
// always returns 0, and Energy/DerivativeFactor reconstruct r2 = o/ns
// from the offset instead of reading a precomputed array, so the
// "table" has effectively continuous resolution without allocating
// one entry per sample.
type analyticPairFunction struct {
	ns        int
	cutoffSqr float64
}

func (f analyticPairFunction) NR() int               { return 1 }
func (f analyticPairFunction) NS() int               { return f.ns }
func (f analyticPairFunction) CutoffSqr() float64    { return f.cutoffSqr }
func (f analyticPairFunction) PairIndex(_, _ int) int { return 0 }
func (f analyticPairFunction) Energy(o int) float64 {
	r2 := float64(o) / float64(f.ns)
	return 1 / (1 + r2)
}
func (f analyticPairFunction) DerivativeFactor(o int) float64 {
	r2 := float64(o) / float64(f.ns)
	d := 1 + r2
	return -2 / (d * d)
}

func zeroGrid(center geom.Vec3, halfExtent float64) *receptor.Grid {
	size := geom.Vec3{X: 2 * halfExtent, Y: 2 * halfExtent, Z: 2 * halfExtent}
	types := make([]int, molecule.NumXSTypes)
	for i := range types {
		types[i] = i
	}
	return receptor.NewGrid(center, size, 0.5, types)
}

func defaultConformation(lig *molecule.Ligand) []float64 {
	x := make([]float64, lig.NumVariables())
	x[3] = 1 // identity quaternion
	return x
}

func TestEvaluateSingleAtomMatchesGridValue(t *testing.T) {
	sf := analyticPairFunction{ns: 10, cutoffSqr: 64}
	lig := parseTestLigand(t, singleAtomLigandText(), sf)

	grid := zeroGrid(geom.Vec3{}, 10)
	grid.Set(lig.Heavy[0].XSType, 20, 20, 20, -3.5) // center of the grid, ix=iy=iz=halfExtent/granularity

	x := defaultConformation(lig)
	s := NewScratch(lig)
	energy, ok := Evaluate(lig, sf, grid, x, math.Inf(1), s)
	require.True(t, ok)
	assert.InDelta(t, -3.5, energy, 1e-9)
}

func TestGradientMatchesFiniteDifference(t *testing.T) {
	sf := analyticPairFunction{ns: 1_000_000, cutoffSqr: 64}
	lig := parseTestLigand(t, chainLigandText(), sf)
	require.NotEmpty(t, lig.Pairs, "fixture must exercise the pair-potential term")
	grid := zeroGrid(geom.Vec3{}, 20)

	x := defaultConformation(lig)
	x[0], x[1], x[2] = 1, -2, 0.5
	x[7] = 0.3  // frame1 torsion
	x[8] = -0.2 // frame2 torsion

	s := NewScratch(lig)
	_, ok := Evaluate(lig, sf, grid, x, math.Inf(1), s)
	require.True(t, ok)
	analytic := append([]float64(nil), s.Gradient...)

	const delta = 1e-4
	for i := 0; i < lig.NumGradient(); i++ {
		xPlus := append([]float64(nil), x...)
		xMinus := append([]float64(nil), x...)
		perturbVariable(xPlus, i, delta)
		perturbVariable(xMinus, i, -delta)

		ePlus, okP := Evaluate(lig, sf, grid, xPlus, math.Inf(1), NewScratch(lig))
		eMinus, okM := Evaluate(lig, sf, grid, xMinus, math.Inf(1), NewScratch(lig))
		require.True(t, okP)
		require.True(t, okM)

		fd := (ePlus - eMinus) / (2 * delta)
		assert.InDeltaf(t, fd, analytic[i], 5e-2, "gradient component %d", i)
	}
}

// perturbVariable nudges gradient-space variable i of x by delta,
// matching the BFGS trial-step convention: [0:3) translate the
// position, [3:6) rotate ROOT by a small rotation vector, [6:) shifts
// the corresponding torsion.
func perturbVariable(x []float64, i int, delta float64) {
	switch {
	case i < 3:
		x[i] += delta
	case i < 6:
		rotvec := geom.Vec3{}
		switch i {
		case 3:
			rotvec.X = delta
		case 4:
			rotvec.Y = delta
		case 5:
			rotvec.Z = delta
		}
		dq := geom.RotationVectorToQuat(rotvec)
		q := geom.Quaternion{W: x[3], X: x[4], Y: x[5], Z: x[6]}
		q2 := dq.Mul(q).Normalize()
		x[3], x[4], x[5], x[6] = q2.W, q2.X, q2.Y, q2.Z
	default:
		x[7+(i-6)] += delta
	}
}

func TestRotationInvarianceOfPairEnergy(t *testing.T) {
	sf := analyticPairFunction{ns: 1000, cutoffSqr: 64}
	lig := parseTestLigand(t, chainLigandText(), sf)
	require.NotEmpty(t, lig.Pairs)
	grid := zeroGrid(geom.Vec3{}, 20)

	x1 := defaultConformation(lig)
	x1[7] = 0.4
	x1[8] = -0.3

	axis := geom.Vec3{X: 0.2, Y: 0.6, Z: 0.1}.Normalize()
	q := geom.AxisAngleToQuat(axis, 1.1)
	x2 := append([]float64(nil), x1...)
	x2[3], x2[4], x2[5], x2[6] = q.W, q.X, q.Y, q.Z

	e1, ok1 := Evaluate(lig, sf, grid, x1, math.Inf(1), NewScratch(lig))
	e2, ok2 := Evaluate(lig, sf, grid, x2, math.Inf(1), NewScratch(lig))
	require.True(t, ok1)
	require.True(t, ok2)
	assert.InDelta(t, e1, e2, 1e-9, "a rigid rotation about ROOT must not change the intra-ligand pair energy")
}

func TestInactiveFrameLocalCoordIsFrameOrigin(t *testing.T) {
	sf := analyticPairFunction{ns: 10, cutoffSqr: 64}
	lig := parseTestLigand(t, hydroxylLigandText(), sf)

	require.False(t, lig.Frames[1].Active)
	oxygenIdx := lig.Frames[1].RotorYIndex
	assert.Equal(t, geom.Vec3{}, lig.Heavy[oxygenIdx].Coord,
		"a single-heavy-atom frame's own atom sits at its frame's rotor-Y origin, so no rotation of that frame can move it")
}
