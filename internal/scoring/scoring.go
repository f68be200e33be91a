// Package scoring defines the tabulated intra-ligand pair-scoring
// contract (spec §6's "scoring_function" external collaborator) and a
// minimal in-memory implementation of it.
//
// Production pair-potential tables are generated offline from a
// training set of protein-ligand complexes; that generator is out of
// scope here (spec.md Non-goals: "no alternative scoring functions").
// Function, the small interface the evaluator actually consumes, is
// what the core is specified against; Table is a literal in-memory
// stand-in good enough to build and test the evaluator end to end.
package scoring

// Function is the contract the evaluator needs from a scoring
// function: the number of distinct xs-type pair combinations (NR),
// the number of samples per unit r² (NS), the pair interaction cutoff
// in squared distance, and the tabulated energy/derivative-factor
// arrays indexed by offset.
type Function interface {
	// NR returns the number of xs-type pair combinations.
	NR() int
	// NS returns the number of samples per unit r².
	NS() int
	// CutoffSqr returns the squared distance beyond which pairs are
	// not scored.
	CutoffSqr() float64
	// PairIndex canonicalizes the unordered pair of xs types and
	// returns the base offset (p_offset) into the Energy/
	// DerivativeFactor arrays for that pair's sample block — "the
	// offset into these arrays" per spec §6.
	PairIndex(xsI, xsJ int) int
	// Energy returns the tabulated energy at sample offset o.
	Energy(o int) float64
	// DerivativeFactor returns the tabulated dU/dr / r at sample
	// offset o, i.e. the scalar that multiplied by the separation
	// vector r yields the pairwise force.
	DerivativeFactor(o int) float64
}

// Table is a dense, literal implementation of Function: e and d are
// flat arrays of length nr*samples, indexed as
// p_offset + floor(ns*r2), exactly as spec §4.3 describes.
type Table struct {
	numTypes  int
	samples   int
	cutoffSqr float64
	ns        int
	e         []float64
	d         []float64
}

// NewTable builds a Table for numTypes distinct xs types, ns samples
// per unit r², and the given squared cutoff. The tabulated arrays are
// allocated zeroed; callers populate them with Set before use (tests
// typically build a simple analytic potential, e.g. a shifted
// Lennard-Jones well).
func NewTable(numTypes, ns int, cutoffSqr float64) *Table {
	nr := numTypes * (numTypes + 1) / 2
	samples := int(cutoffSqr*float64(ns)) + 2
	return &Table{
		numTypes:  numTypes,
		samples:   samples,
		cutoffSqr: cutoffSqr,
		ns:        ns,
		e:         make([]float64, nr*samples),
		d:         make([]float64, nr*samples),
	}
}

// Set writes the energy and derivative-factor samples for the pair
// (xsI, xsJ) at offset sampleIdx within that pair's block.
func (t *Table) Set(xsI, xsJ, sampleIdx int, energy, derivFactor float64) {
	base := t.PairIndex(xsI, xsJ)
	t.e[base+sampleIdx] = energy
	t.d[base+sampleIdx] = derivFactor
}

func (t *Table) NR() int            { return t.numTypes * (t.numTypes + 1) / 2 }
func (t *Table) NS() int            { return t.ns }
func (t *Table) CutoffSqr() float64 { return t.cutoffSqr }

// canonicalPairIndex packs the unordered pair (xsI, xsJ) over
// [0, numTypes) into [0, numTypes*(numTypes+1)/2).
func (t *Table) canonicalPairIndex(xsI, xsJ int) int {
	lo, hi := xsI, xsJ
	if lo > hi {
		lo, hi = hi, lo
	}
	return hi*(hi+1)/2 + lo
}

// PairIndex returns the base offset (p_offset) of the given xs-type
// pair's sample block within the flat Energy/DerivativeFactor arrays.
func (t *Table) PairIndex(xsI, xsJ int) int {
	return t.canonicalPairIndex(xsI, xsJ) * t.samples
}

func (t *Table) Energy(o int) float64 {
	if o < 0 || o >= len(t.e) {
		return 0
	}
	return t.e[o]
}

func (t *Table) DerivativeFactor(o int) float64 {
	if o < 0 || o >= len(t.d) {
		return 0
	}
	return t.d[o]
}

// Samples returns the number of r² samples per pair block.
func (t *Table) Samples() int { return t.samples }
