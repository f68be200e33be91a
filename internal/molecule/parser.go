package molecule

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarat-asymmetrica/ligandock/internal/geom"
	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

// ParseError is raised for malformed ligand input: unmatched or empty
// BRANCH/ENDBRANCH blocks, a BRANCH whose rotorX serial cannot be
// found in the current frame. It carries the offending file name so
// the dispatch layer can log and skip the ligand (spec §7).
type ParseError struct {
	File string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// builder accumulates parser state across the single forward scan
// described in spec §4.2.
type builder struct {
	file string
	sf   scoring.Function

	heavy     []Atom
	hydrogens []Atom
	frames    []Frame
	lines     []string

	// stack of open frame indices; stack[0] is always 0 (ROOT).
	stack []int

	// bonds[i] lists the heavy-atom indices covalently bonded to i,
	// including rotor-axis bonds recorded at ENDBRANCH.
	bonds [][]int
}

func (b *builder) current() int {
	return b.stack[len(b.stack)-1]
}

func (b *builder) fail(format string, args ...interface{}) error {
	return &ParseError{File: b.file, Msg: fmt.Sprintf(format, args...)}
}

// Parse reads a PDBQT-like ligand stream and builds its Ligand data
// model: atoms, the frame tree, and the intra-ligand interacting-pair
// list. sf supplies the pair-index function used to precompute each
// pair's POffset (see spec §4.2 and SPEC_FULL.md's pair-offset-formula
// decision).
func Parse(r io.Reader, filename string, sf scoring.Function) (*Ligand, error) {
	b := &builder{
		file:  filename,
		sf:    sf,
		stack: []int{0},
	}
	// Frame 0 is ROOT: its own parent (self-sentinel).
	b.frames = append(b.frames, Frame{Parent: 0, RotorYIndex: 0, Active: true})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		b.lines = append(b.lines, line)

		if len(line) < 4 {
			continue
		}
		tag := line[:4]

		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if err := b.handleAtomLine(line); err != nil {
				return nil, err
			}
		case tag == "ROOT":
			// no semantic action beyond the verbatim line capture above
		case strings.HasPrefix(line, "ENDROOT"):
			b.finalizeCurrent()
		case strings.HasPrefix(line, "ENDBRANCH"):
			if err := b.handleEndBranch(line); err != nil {
				return nil, err
			}
		case tag == "BRAN": // "BRANCH"
			if err := b.handleBranch(line); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "TORSDOF"):
			// no semantic action
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: error reading ligand file: %w", filename, err)
	}

	if len(b.stack) != 1 {
		return nil, b.fail("unmatched BRANCH: %d block(s) never closed", len(b.stack)-1)
	}
	// In case the file never finalized ROOT via ENDROOT (e.g. a
	// single-frame rigid ligand with no ENDROOT at all), finalize now.
	b.finalizeCurrent()

	b.finalizeFrameLocalCoordinates()

	lig := &Ligand{
		Heavy:     b.heavy,
		Hydrogens: b.hydrogens,
		Frames:    b.frames,
		Lines:     b.lines,
	}
	lig.NumHeavyAtoms = len(lig.Heavy)
	lig.NumHydrogens = len(lig.Hydrogens)
	lig.NumFrames = len(lig.Frames)
	if lig.NumHeavyAtoms > 0 {
		lig.NumHeavyAtomsInverse = 1.0 / float64(lig.NumHeavyAtoms)
	}
	lig.NumTorsions = lig.NumFrames - 1
	active := 0
	for _, f := range lig.Frames[1:] {
		if f.Active {
			active++
		}
	}
	lig.NumActiveTorsions = active

	lig.Pairs = b.buildInteractingPairs(sf)

	return lig, nil
}

// finalizeCurrent sets the currently-open frame's HeavyEnd/HydrogenEnd
// to the atom counts accumulated so far. Called at ENDROOT, at every
// BRANCH (to close the parent's range before descending), at ENDBRANCH,
// and once more at EOF as a safety net. A frame that already has a
// child branch keeps the range closed at its first BRANCH, so later
// calls never extend it over its children's atoms.
func (b *builder) finalizeCurrent() {
	f := &b.frames[b.current()]
	if len(f.Branches) > 0 {
		return
	}
	f.HeavyEnd = len(b.heavy)
	f.HydrogenEnd = len(b.hydrogens)
}

func (b *builder) handleAtomLine(line string) error {
	padded := line
	for len(padded) < 80 {
		padded += " "
	}
	if len(padded) < 78 {
		return nil // too short to carry a type code; stored verbatim, skipped for topology
	}

	serial, err := strconv.Atoi(strings.TrimSpace(padded[6:11]))
	if err != nil {
		return nil
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(padded[30:38]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(padded[38:46]), 64)
	z, errZ := strconv.ParseFloat(strings.TrimSpace(padded[46:54]), 64)
	if errX != nil || errY != nil || errZ != nil {
		return nil
	}
	typeCode := padded[76:78]

	atom, ok := newAtom(serial, geom.Vec3{X: x, Y: y, Z: z}, typeCode)
	if !ok {
		return nil // unsupported atom type: verbatim line kept, skipped for topology
	}

	if atom.IsHydrogen {
		idx := len(b.hydrogens)
		b.hydrogens = append(b.hydrogens, atom)
		if atom.IsPolarH {
			b.classifyDonor(idx)
		}
		return nil
	}

	idx := len(b.heavy)
	b.bonds = append(b.bonds, nil)
	b.heavy = append(b.heavy, atom)
	b.bondNewHeavyAtom(idx)
	return nil
}

// bondNewHeavyAtom scans the previously added heavy atoms of the
// current frame for a covalent-distance match to the atom just
// appended at index newIdx, recording bonds and updating the
// hydrophobic flag symmetrically when a carbon bonds to a hetero atom.
func (b *builder) bondNewHeavyAtom(newIdx int) {
	frame := &b.frames[b.current()]
	newAtom := &b.heavy[newIdx]
	for i := frame.HeavyBegin; i < newIdx; i++ {
		other := &b.heavy[i]
		d2 := newAtom.Coord.Sub(other.Coord).Norm2()
		if d2 > covalentCutoff2(*newAtom, *other) {
			continue
		}
		b.addBond(newIdx, i)

		if isCarbonLike(*newAtom) && other.IsHetero {
			newAtom.IsHydrophobic = false
		}
		if isCarbonLike(*other) && newAtom.IsHetero {
			other.IsHydrophobic = false
		}
	}
}

func isCarbonLike(a Atom) bool {
	return a.XSType == 0 || a.XSType == 1 // "C" or "A"
}

func (b *builder) addBond(i, j int) {
	b.bonds[i] = append(b.bonds[i], j)
	b.bonds[j] = append(b.bonds[j], i)
}

// classifyDonor reverse-scans the current frame's heavy atoms for the
// one covalently bonded to the polar hydrogen at hydrogens[hIdx],
// marking it as a hydrogen-bond donor.
func (b *builder) classifyDonor(hIdx int) {
	frame := &b.frames[b.current()]
	h := &b.hydrogens[hIdx]
	for i := len(b.heavy) - 1; i >= frame.HeavyBegin; i-- {
		other := &b.heavy[i]
		d2 := h.Coord.Sub(other.Coord).Norm2()
		if other.IsHetero && d2 <= covalentCutoff2(Atom{CovalentRadius: h.CovalentRadius}, *other) {
			other.IsDonor = true
			return
		}
	}
}

func (b *builder) handleBranch(line string) error {
	padded := line
	for len(padded) < 14 {
		padded += " "
	}
	x, errX := strconv.Atoi(strings.TrimSpace(padded[6:10]))
	y, errY := strconv.Atoi(strings.TrimSpace(padded[10:14]))
	if errX != nil || errY != nil {
		return b.fail("malformed BRANCH record: %q", line)
	}

	parentIdx := b.current()
	// Finalize the parent's range before scanning it and descending.
	b.finalizeCurrent()
	parent := &b.frames[parentIdx]

	rotorXIdx := -1
	for i := parent.HeavyBegin; i < parent.HeavyEnd; i++ {
		if b.heavy[i].Serial == x {
			rotorXIdx = i
			break
		}
	}
	if rotorXIdx == -1 {
		return b.fail("BRANCH %d %d: rotorX heavy atom (serial %d) not found in current frame", x, y, x)
	}

	child := Frame{
		Parent:       parentIdx,
		RotorXSerial: x,
		RotorYSerial: y,
		RotorXIndex:  rotorXIdx,
		RotorYIndex:  len(b.heavy), // rotorY is the child's first heavy atom
		HeavyBegin:   len(b.heavy),
		HydrogenBegin: len(b.hydrogens),
		Active:       true,
	}
	childIdx := len(b.frames)
	b.frames = append(b.frames, child)
	// b.frames may have just been reallocated: index fresh rather than
	// writing through parent, which can point into the old array.
	b.frames[parentIdx].Branches = append(b.frames[parentIdx].Branches, childIdx)
	b.stack = append(b.stack, childIdx)
	return nil
}

func (b *builder) handleEndBranch(line string) error {
	frameIdx := b.current()
	if frameIdx == 0 {
		return b.fail("unmatched ENDBRANCH: %q", line)
	}
	frame := &b.frames[frameIdx]

	if len(b.heavy) == frame.HeavyBegin {
		return b.fail("empty BRANCH block for frame rooted at serial %d", frame.RotorYSerial)
	}

	b.finalizeCurrent()
	frame.RotorYIndex = frame.HeavyBegin // invariant: rotorY is the child's first heavy atom

	if frame.NumHeavy() == 1 && len(frame.Branches) == 0 {
		frame.Active = false
	}

	b.addBond(frame.RotorXIndex, frame.RotorYIndex)

	parent := &b.frames[frame.Parent]
	parentRotorY := b.heavy[parent.RotorYIndex].Coord
	rotorX := b.heavy[frame.RotorXIndex].Coord
	rotorY := b.heavy[frame.RotorYIndex].Coord

	frame.ParentRotorYToCurrentRotorY = rotorY.Sub(parentRotorY)
	frame.ParentRotorXToCurrentRotorY = rotorY.Sub(rotorX).Normalize()

	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// finalizeFrameLocalCoordinates re-expresses every heavy-atom and
// hydrogen coordinate relative to its owning frame's rotor-Y origin
// (spec §4.2 post-parse pass 1). ParentRotorYToCurrentRotorY needs no
// further adjustment: it was already computed from world coordinates
// at a moment when every frame's implicit orientation was identity,
// which is exactly what "parent-local" means at the origin frame.
func (b *builder) finalizeFrameLocalCoordinates() {
	for k := range b.frames {
		f := &b.frames[k]
		origin := b.heavy[f.RotorYIndex].Coord
		for i := f.HeavyBegin; i < f.HeavyEnd; i++ {
			b.heavy[i].Coord = b.heavy[i].Coord.Sub(origin)
		}
		for i := f.HydrogenBegin; i < f.HydrogenEnd; i++ {
			b.hydrogens[i].Coord = b.hydrogens[i].Coord.Sub(origin)
		}
	}
}

// buildInteractingPairs enumerates intra-ligand pairs per spec §4.2
// post-parse pass 2.
func (b *builder) buildInteractingPairs(sf scoring.Function) []InteractingPair {
	var pairs []InteractingPair

	for k1 := 0; k1 < len(b.frames); k1++ {
		f1 := &b.frames[k1]
		for i := f1.HeavyBegin; i < f1.HeavyEnd; i++ {
			near := b.reachableWithinBonds(i, 3)

			for k2 := k1 + 1; k2 < len(b.frames); k2++ {
				f2 := &b.frames[k2]
				for j := f2.HeavyBegin; j < f2.HeavyEnd; j++ {
					if near[j] {
						continue
					}
					if excludedByRotorAdjacency(b.frames, k1, k2, i, j) {
						continue
					}
					xi, xj := b.heavy[i].XSType, b.heavy[j].XSType
					pairs = append(pairs, InteractingPair{
						I:       i,
						J:       j,
						POffset: sf.PairIndex(xi, xj),
					})
				}
			}
		}
	}
	return pairs
}

// excludedByRotorAdjacency implements the three rotor-adjacency
// exclusion rules of spec §4.2 (the fourth — bond-graph proximity — is
// handled by the caller's `near` set).
func excludedByRotorAdjacency(frames []Frame, k1, k2, i, j int) bool {
	f2 := &frames[k2]

	// k1 is k2's parent and (i == k2.rotorX or j == k2.rotorY)
	if f2.Parent == k1 && (i == f2.RotorXIndex || j == f2.RotorYIndex) {
		return true
	}

	// k1 and k2 share the same parent (not root) and i == k1.rotorY and j == k2.rotorY
	f1 := &frames[k1]
	if f1.Parent == f2.Parent && f1.Parent != 0 && i == f1.RotorYIndex && j == f2.RotorYIndex {
		return true
	}

	// k2's grandparent exists (k2's parent isn't root) and k1 is that
	// grandparent and i == (k2.parent).rotorX and j == k2.rotorY
	if f2.Parent != 0 {
		parentOfK2 := &frames[f2.Parent]
		if k1 == parentOfK2.Parent && i == parentOfK2.RotorXIndex && j == f2.RotorYIndex {
			return true
		}
	}

	return false
}

// reachableWithinBonds returns the set of heavy-atom indices reachable
// from start within maxDepth covalent-bond steps, not including start
// itself.
func (b *builder) reachableWithinBonds(start, maxDepth int) map[int]bool {
	depth := map[int]int{start: 0}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := depth[cur]
		if d >= maxDepth {
			continue
		}
		for _, nb := range b.bonds[cur] {
			if _, seen := depth[nb]; !seen {
				depth[nb] = d + 1
				queue = append(queue, nb)
			}
		}
	}
	delete(depth, start)
	result := make(map[int]bool, len(depth))
	for k := range depth {
		result[k] = true
	}
	return result
}
