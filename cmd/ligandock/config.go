package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DockConfig holds every tunable the CLI exposes, overlaid in order:
// built-in defaults, then an optional --config YAML file, then
// explicit flags. The demo receptor box fields (BoxSize, Granularity)
// stand in for what a production deployment would read from a
// receptor's .map/.fld grid files (out of scope; see SPEC_FULL.md).
// CenterX/Y/Z are read from the YAML file but not used: the demo box is
// always centered on the ligand's heavy-atom centroid.
type DockConfig struct {
	Generations    int     `yaml:"generations"`
	BFGSIterations int     `yaml:"bfgs_iterations"`
	Seed           int64   `yaml:"seed"`
	CenterX        float64 `yaml:"center_x"`
	CenterY        float64 `yaml:"center_y"`
	CenterZ        float64 `yaml:"center_z"`
	BoxSize        float64 `yaml:"box_size"`
	Granularity    float64 `yaml:"granularity"`
	CutoffSqr      float64 `yaml:"cutoff_sqr"`
}

// DefaultDockConfig returns the parameters used when neither a config
// file nor CLI flags override them.
func DefaultDockConfig() DockConfig {
	return DockConfig{
		Generations:    10,
		BFGSIterations: 300,
		Seed:           42,
		BoxSize:        20,
		Granularity:    0.375,
		CutoffSqr:      64,
	}
}

// loadConfigFile overlays path's YAML content onto cfg. Fields absent
// from the file are left at their current value.
func loadConfigFile(path string, cfg *DockConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}
