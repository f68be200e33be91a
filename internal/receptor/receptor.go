// Package receptor defines the precomputed receptor energy-grid
// contract (spec §6's "receptor" external collaborator) and a minimal
// in-memory implementation of it.
//
// A production receptor is built by scanning a rigid macromolecule's
// atoms against a probe grid for every xs type, typically read from
// AutoGrid-style .map/.fld files; that reader is out of scope here
// (see SPEC_FULL.md). Grid is a literal in-memory stand-in over the
// same indexing scheme, good enough to build and test the evaluator
// end to end.
package receptor

import "github.com/sarat-asymmetrica/ligandock/internal/geom"

// Receptor is the contract the evaluator needs: box membership,
// world-coordinate-to-probe-index conversion, and per-xs-type grid
// maps.
type Receptor interface {
	// Center returns the receptor box's center, used to seed the
	// optimizer's random initial ROOT position.
	Center() geom.Vec3
	// Size returns the receptor box's full side lengths.
	Size() geom.Vec3
	// Within reports whether p lies inside the receptor's probe box.
	Within(p geom.Vec3) bool
	// CoordinateToIndex converts a world coordinate known to be Within
	// the box into its containing probe-grid cell (the lower corner of
	// the interpolation cube).
	CoordinateToIndex(p geom.Vec3) (ix, iy, iz int)
	// GranularityInverse is 1/spacing between adjacent probes.
	GranularityInverse() float64
	// NumProbes returns the probe counts along each axis.
	NumProbes() [3]int
	// Value returns the precomputed grid value for xsType at probe
	// index (ix,iy,iz), out-of-range indices clamped to the boundary
	// value.
	Value(xsType, ix, iy, iz int) float64
}

// Grid is a dense, literal implementation of Receptor: one flat
// []float64 per xs type, indexed as ix + nx*(iy + ny*iz).
type Grid struct {
	center      geom.Vec3
	size        geom.Vec3
	granularity float64
	numProbes   [3]int
	maps        map[int][]float64
}

// NewGrid allocates a Grid spanning center +/- size/2 with the given
// probe spacing (granularity) and zeroed maps for the given xs types.
func NewGrid(center, size geom.Vec3, granularity float64, xsTypes []int) *Grid {
	nx := int(size.X/granularity) + 1
	ny := int(size.Y/granularity) + 1
	nz := int(size.Z/granularity) + 1

	g := &Grid{
		center:      center,
		size:        size,
		granularity: granularity,
		numProbes:   [3]int{nx, ny, nz},
		maps:        make(map[int][]float64, len(xsTypes)),
	}
	for _, xs := range xsTypes {
		g.maps[xs] = make([]float64, nx*ny*nz)
	}
	return g
}

// origin returns the world coordinate of probe (0,0,0).
func (g *Grid) origin() geom.Vec3 {
	return geom.Vec3{
		X: g.center.X - g.size.X/2,
		Y: g.center.Y - g.size.Y/2,
		Z: g.center.Z - g.size.Z/2,
	}
}

func (g *Grid) Within(p geom.Vec3) bool {
	o := g.origin()
	if p.X < o.X || p.Y < o.Y || p.Z < o.Z {
		return false
	}
	if p.X > o.X+g.size.X || p.Y > o.Y+g.size.Y || p.Z > o.Z+g.size.Z {
		return false
	}
	return true
}

func (g *Grid) CoordinateToIndex(p geom.Vec3) (ix, iy, iz int) {
	o := g.origin()
	ix = int((p.X - o.X) / g.granularity)
	iy = int((p.Y - o.Y) / g.granularity)
	iz = int((p.Z - o.Z) / g.granularity)
	return
}

func (g *Grid) GranularityInverse() float64 { return 1 / g.granularity }

func (g *Grid) NumProbes() [3]int { return g.numProbes }

func (g *Grid) Value(xsType, ix, iy, iz int) float64 {
	nx, ny, nz := g.numProbes[0], g.numProbes[1], g.numProbes[2]
	if ix < 0 {
		ix = 0
	}
	if iy < 0 {
		iy = 0
	}
	if iz < 0 {
		iz = 0
	}
	if ix >= nx {
		ix = nx - 1
	}
	if iy >= ny {
		iy = ny - 1
	}
	if iz >= nz {
		iz = nz - 1
	}
	m, ok := g.maps[xsType]
	if !ok {
		return 0
	}
	idx := ix + nx*(iy+ny*iz)
	if idx < 0 || idx >= len(m) {
		return 0
	}
	return m[idx]
}

// Set writes a grid value for xsType at probe index (ix,iy,iz). Used
// by tests and by any offline grid-precomputation step.
func (g *Grid) Set(xsType, ix, iy, iz int, value float64) {
	m, ok := g.maps[xsType]
	if !ok {
		return
	}
	nx, ny := g.numProbes[0], g.numProbes[1]
	idx := ix + nx*(iy+ny*iz)
	if idx < 0 || idx >= len(m) {
		return
	}
	m[idx] = value
}

// Center returns the receptor box's center.
func (g *Grid) Center() geom.Vec3 { return g.center }

// Size returns the receptor box's full side lengths.
func (g *Grid) Size() geom.Vec3 { return g.size }
