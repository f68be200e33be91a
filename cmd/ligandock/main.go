// Command ligandock parses a flexible ligand, relaxes its pose inside a
// receptor grid with the Metropolis/BFGS driver in internal/dock, and
// writes the best conformation found back out as a PDBQT MODEL block.
//
// Grounded on bebop-poly's main()/run(args)/application() *cli.App
// split (_examples/bebop-poly/poly/main.go).
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sarat-asymmetrica/ligandock/internal/dock"
	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/logging"
	"github.com/sarat-asymmetrica/ligandock/internal/molecule"
	"github.com/sarat-asymmetrica/ligandock/internal/pdbqt"
	"github.com/sarat-asymmetrica/ligandock/internal/receptor"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

func main() {
	run(os.Args)
}

func run(args []string) {
	app := application()
	if err := app.Run(args); err != nil {
		logging.Log.Fatal().Err(err).Msg("ligandock failed")
	}
}

func application() *cli.App {
	return &cli.App{
		Name:  "ligandock",
		Usage: "flexible small-molecule docking: parse a ligand, relax its pose against a receptor grid, write the best pose found",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ligand", Required: true, Usage: "path to the PDBQT-like ligand file"},
			&cli.StringFlag{Name: "output", Value: "out.pdbqt", Usage: "path to write the docked pose"},
			&cli.StringFlag{Name: "config", Usage: "optional YAML file overlaying the defaults below"},
			&cli.Int64Flag{Name: "seed", Value: 42, Usage: "Metropolis/BFGS random seed"},
			&cli.IntFlag{Name: "generations", Value: 10, Usage: "number of Metropolis outer-loop generations"},
			&cli.IntFlag{Name: "bfgs-iterations", Value: 300, Usage: "maximum BFGS iterations per generation"},
			&cli.Float64Flag{Name: "box-size", Value: 20, Usage: "receptor box side length, in angstroms"},
			&cli.Float64Flag{Name: "granularity", Value: 0.375, Usage: "receptor grid probe spacing, in angstroms"},
			&cli.BoolFlag{Name: "verbose", Usage: "log per-generation progress and debug-level messages"},
		},
		Action: runDock,
	}
}

func runDock(c *cli.Context) error {
	if c.Bool("verbose") {
		logging.SetLevel("debug")
	} else {
		logging.SetLevel("info")
	}

	cfg := DefaultDockConfig()
	if path := c.String("config"); path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return err
		}
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
	if c.IsSet("generations") {
		cfg.Generations = c.Int("generations")
	}
	if c.IsSet("bfgs-iterations") {
		cfg.BFGSIterations = c.Int("bfgs-iterations")
	}
	if c.IsSet("box-size") {
		cfg.BoxSize = c.Float64("box-size")
	}
	if c.IsSet("granularity") {
		cfg.Granularity = c.Float64("granularity")
	}

	ligandPath := c.String("ligand")
	f, err := os.Open(ligandPath)
	if err != nil {
		return fmt.Errorf("opening ligand file: %w", err)
	}
	defer f.Close()

	sf := demoScoringTable(cfg.CutoffSqr)

	lig, err := molecule.Parse(f, ligandPath, sf)
	if err != nil {
		return fmt.Errorf("parsing ligand: %w", err)
	}
	logging.Log.Info().
		Str("ligand", ligandPath).
		Int("frames", lig.NumFrames).
		Int("active_torsions", lig.NumActiveTorsions).
		Int("pairs", len(lig.Pairs)).
		Msg("parsed ligand")

	center := ligandCentroid(lig)
	rec := demoReceptor(center, cfg.BoxSize, cfg.Granularity)

	result, err := dock.Run(lig, sf, rec, dock.Config{
		NumGenerations:    cfg.Generations,
		MaxBFGSIterations: cfg.BFGSIterations,
		Seed:              cfg.Seed,
		Verbose:           c.Bool("verbose"),
	})
	if err != nil {
		return fmt.Errorf("docking: %w", err)
	}
	logging.Log.Info().Float64("energy", result.Energy).Msg("docking complete")

	out, err := os.Create(c.String("output"))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := pdbqt.WriteModel(out, 1, result.Energy, lig, result.HeavyCoords, result.HydrogenCoords); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// ligandCentroid seeds the demo receptor box on the ligand's own heavy
// atoms, so the CLI has somewhere sensible to search without requiring
// a real macromolecule; a production deployment would instead center
// the box on a pre-identified binding site.
func ligandCentroid(lig *molecule.Ligand) geom.Vec3 {
	var sum geom.Vec3
	for _, a := range lig.Heavy {
		sum = sum.Add(a.Coord)
	}
	if lig.NumHeavyAtoms == 0 {
		return geom.Vec3{}
	}
	return sum.Scale(1 / float64(lig.NumHeavyAtoms))
}

// demoReceptor builds a zeroed Grid spanning a cube of boxSize around
// center. With no energy recorded at any probe, only the intra-ligand
// pair term and the box-membership penalty drive the search; reading a
// production receptor from .map/.fld files is out of scope (spec.md
// Non-goals; see SPEC_FULL.md).
func demoReceptor(center geom.Vec3, boxSize, granularity float64) *receptor.Grid {
	size := geom.Vec3{X: boxSize, Y: boxSize, Z: boxSize}
	xsTypes := make([]int, molecule.NumXSTypes)
	for i := range xsTypes {
		xsTypes[i] = i
	}
	return receptor.NewGrid(center, size, granularity, xsTypes)
}

// demoScoringTable builds a Table over a shifted Lennard-Jones-style
// well, shared by every xs-type pair. A production table is fit
// offline against a training set of complexes (spec.md Non-goals: "no
// alternative scoring functions"); this stands in for it well enough
// to exercise the evaluator end to end.
func demoScoringTable(cutoffSqr float64) *scoring.Table {
	const ns = 100
	table := scoring.NewTable(molecule.NumXSTypes, ns, cutoffSqr)
	samples := table.Samples()
	for xsI := 0; xsI < molecule.NumXSTypes; xsI++ {
		for xsJ := xsI; xsJ < molecule.NumXSTypes; xsJ++ {
			for s := 0; s < samples; s++ {
				r2 := float64(s) / ns
				r := math.Sqrt(r2)
				const rEquilibrium = 3.5
				ratio := rEquilibrium / math.Max(r, 1e-3)
				energy := ratio*ratio*ratio*ratio*ratio*ratio*ratio*ratio*ratio*ratio*ratio*ratio - 2*ratio*ratio*ratio*ratio*ratio*ratio
				derivFactor := (-12*math.Pow(ratio, 12) + 12*math.Pow(ratio, 6)) / math.Max(r2, 1e-6)
				table.Set(xsI, xsJ, s, energy, derivFactor)
			}
		}
	}
	return table
}
