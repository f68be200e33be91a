package dock

import (
	"fmt"
	"math/rand"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
	"github.com/sarat-asymmetrica/ligandock/internal/receptor"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

// Config holds the Metropolis/BFGS driver's tunable parameters.
type Config struct {
	NumGenerations    int
	MaxBFGSIterations int
	Seed              int64

	// Verbose gates per-generation progress lines to stdout, in the
	// same style as the rest of this repo's optimization drivers.
	Verbose bool
}

// DefaultConfig returns the parameters used when a caller doesn't
// override them via CLI flags or a config file.
func DefaultConfig() Config {
	return Config{
		NumGenerations:    10,
		MaxBFGSIterations: 300,
		Seed:              42,
		Verbose:           false,
	}
}

// Result is the best conformation found across all generations, with
// its world coordinates composed for output.
type Result struct {
	Energy         float64
	X              []float64
	HeavyCoords    []geom.Vec3
	HydrogenCoords []geom.Vec3
	Generations    int
}

// Run drives the Metropolis outer loop described in spec §4.4: each
// generation perturbs the current best conformation's position,
// relaxes it with BFGS, and keeps the result if it improved. It is a
// pure function of (lig, sf, rec, cfg) — deterministic for a fixed
// seed (spec §8 item 8) and free of shared mutable state (spec §5), so
// independent calls across ligands and seeds may run concurrently
// without coordination.
func Run(lig *molecule.Ligand, sf scoring.Function, rec receptor.Receptor, cfg Config) (*Result, error) {
	if lig.NumHeavyAtoms == 0 {
		return nil, fmt.Errorf("ligand has no heavy atoms")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s := NewScratch(lig)

	x0 := initialConformation(lig, rec, rng)
	e0, ok := Evaluate(lig, sf, rec, x0, boxPenalty*float64(lig.NumHeavyAtoms)+1, s)
	if !ok {
		// Even a maximally out-of-box placement scores at most
		// boxPenalty per atom; this only trips if rec/sf are
		// inconsistent with the ligand.
		e0 = boxPenalty * float64(lig.NumHeavyAtoms)
	}

	for gen := 0; gen < cfg.NumGenerations; gen++ {
		x1 := append([]float64(nil), x0...)
		x1[0] += rng.Float64()*2 - 1
		x1[1] += rng.Float64()*2 - 1
		x1[2] += rng.Float64()*2 - 1

		e1 := runBFGS(lig, sf, rec, x1, cfg.MaxBFGSIterations, s)

		if cfg.Verbose {
			fmt.Printf("generation %d: candidate energy = %.4f (best = %.4f)\n", gen, e1, e0)
		}

		if e1 < e0 {
			x0, e0 = x1, e1
		}
	}

	heavy, hydrogens := ComposeResult(lig, x0, s)
	return &Result{
		Energy:         e0,
		X:              x0,
		HeavyCoords:    heavy,
		HydrogenCoords: hydrogens,
		Generations:    cfg.NumGenerations,
	}, nil
}

// initialConformation builds the first generation's starting point:
// ROOT position uniform within the receptor's box, orientation
// uniform on the unit 3-sphere, torsions uniform in [-1,1] (spec
// §4.4).
func initialConformation(lig *molecule.Ligand, rec receptor.Receptor, rng *rand.Rand) []float64 {
	x := make([]float64, lig.NumVariables())

	center := rec.Center()
	size := rec.Size()
	x[0] = center.X + (rng.Float64()*2-1)*size.X/2
	x[1] = center.Y + (rng.Float64()*2-1)*size.Y/2
	x[2] = center.Z + (rng.Float64()*2-1)*size.Z/2

	q := geom.Quaternion{
		W: rng.Float64()*2 - 1,
		X: rng.Float64()*2 - 1,
		Y: rng.Float64()*2 - 1,
		Z: rng.Float64()*2 - 1,
	}.Normalize()
	x[3], x[4], x[5], x[6] = q.W, q.X, q.Y, q.Z

	for i := 7; i < len(x); i++ {
		x[i] = rng.Float64()*2 - 1
	}
	return x
}
