package molecule

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarat-asymmetrica/ligandock/internal/scoring"
)

func testScoringFunction() scoring.Function {
	return scoring.NewTable(NumXSTypes, 10, 64.0)
}

// atomLine builds a fixed-column ATOM record matching spec §6's layout:
// serial at cols[6:11), coordinates at cols[30:54) as three %8.3f
// fields, and the xs-type code at cols[76:78).
func atomLine(serial int, x, y, z float64, typeCode string) string {
	head := fmt.Sprintf("%-6s%5d", "ATOM", serial)       // cols [0:11)
	head += strings.Repeat(" ", 30-len(head))             // pad to col 30
	head += fmt.Sprintf("%8.3f%8.3f%8.3f", x, y, z)       // cols [30:54)
	head += strings.Repeat(" ", 70-len(head))             // pad to col 70
	head += strings.Repeat(" ", 6)                        // cols [70:76)
	head += fmt.Sprintf("%2s", typeCode)                  // cols [76:78)
	return head
}

func branchLine(x, y int) string {
	return fmt.Sprintf("%-6s%4d%4d", "BRANCH", x, y)
}

func endBranchLine(x, y int) string {
	return fmt.Sprintf("%-9s%4d%4d", "ENDBRANCH", x, y)
}

func TestParseSingleAtomLigand(t *testing.T) {
	text := strings.Join([]string{
		"ROOT",
		atomLine(1, 1, 2, 3, "C"),
		"ENDROOT",
		"TORSDOF 0",
	}, "\n")

	lig, err := Parse(strings.NewReader(text), "single.pdbqt", testScoringFunction())
	require.NoError(t, err)

	assert.Equal(t, 1, lig.NumFrames)
	assert.Equal(t, 0, lig.NumTorsions)
	assert.Equal(t, 0, lig.NumActiveTorsions)
	assert.Equal(t, 7, lig.NumVariables())
	assert.Equal(t, 6, lig.NumGradient())
	require.Len(t, lig.Heavy, 1)
	assert.Equal(t, 0, lig.Frames[0].HeavyBegin)
	assert.Equal(t, 1, lig.Frames[0].HeavyEnd)
	// Post-parse pass 1: the only atom is its frame's own rotor-Y, so its
	// frame-local coordinate collapses to the origin.
	assert.Equal(t, 0.0, lig.Heavy[0].Coord.X)
	assert.Equal(t, 0.0, lig.Heavy[0].Coord.Y)
	assert.Equal(t, 0.0, lig.Heavy[0].Coord.Z)
}

func TestParseTwoFrameLigandWithActiveTorsion(t *testing.T) {
	text := strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.5, 0, 0, "C"),
		atomLine(3, 2.5, 0.5, 0, "C"),
		endBranchLine(1, 2),
		"TORSDOF 1",
	}, "\n")

	lig, err := Parse(strings.NewReader(text), "two_frame.pdbqt", testScoringFunction())
	require.NoError(t, err)

	assert.Equal(t, 2, lig.NumFrames)
	assert.Equal(t, 1, lig.NumTorsions)
	assert.Equal(t, 1, lig.NumActiveTorsions)
	assert.Equal(t, 8, lig.NumVariables())
	require.True(t, lig.Frames[1].Active)
	assert.Equal(t, 0, lig.Frames[1].Parent)
	assert.Equal(t, lig.Frames[1].HeavyBegin, lig.Frames[1].RotorYIndex)
	assert.InDelta(t, 1.0, lig.Frames[1].ParentRotorXToCurrentRotorY.Norm(), 1e-9)
}

func TestParseHydroxylGroupIsInactive(t *testing.T) {
	text := strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.4, 0, 0, "OA"),
		atomLine(3, 2.1, 0.5, 0, "HD"),
		endBranchLine(1, 2),
		"TORSDOF 1",
	}, "\n")

	lig, err := Parse(strings.NewReader(text), "hydroxyl.pdbqt", testScoringFunction())
	require.NoError(t, err)

	assert.Equal(t, 2, lig.NumFrames)
	assert.False(t, lig.Frames[1].Active)
	assert.Equal(t, lig.NumActiveTorsions+1, lig.NumTorsions)
	require.Len(t, lig.Heavy, 2)
	assert.True(t, lig.Heavy[1].IsDonor, "oxygen bonded to a polar hydrogen should be marked as a donor")
}

func TestParseRejectsEmptyBranch(t *testing.T) {
	text := "BRANCH   4   9\nENDBRANCH   4   9"

	_, err := Parse(strings.NewReader(text), "malformed.pdbqt", testScoringFunction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed.pdbqt")

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestFrameTreeWellFormedness(t *testing.T) {
	text := strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.5, 0, 0, "C"),
		atomLine(3, 2.5, 0.5, 0, "C"),
		branchLine(2, 4),
		atomLine(4, 3.5, 1.0, 0, "N"),
		atomLine(5, 4.5, 1.5, 0, "C"),
		endBranchLine(2, 4),
		endBranchLine(1, 2),
		"TORSDOF 2",
	}, "\n")

	lig, err := Parse(strings.NewReader(text), "tree.pdbqt", testScoringFunction())
	require.NoError(t, err)

	seen := make([]bool, lig.NumHeavyAtoms)
	for fi, f := range lig.Frames {
		if fi != 0 {
			assert.Less(t, f.Parent, fi, "frame %d parent must have a strictly smaller index", fi)
			assert.Equal(t, f.HeavyBegin, f.RotorYIndex)
			assert.InDelta(t, 1.0, f.ParentRotorXToCurrentRotorY.Norm(), 1e-9)
		}
		for i := f.HeavyBegin; i < f.HeavyEnd; i++ {
			require.False(t, seen[i], "heavy atom %d claimed by more than one frame", i)
			seen[i] = true
		}
	}
	for i, ok := range seen {
		assert.True(t, ok, "heavy atom %d not owned by any frame", i)
	}
}

func TestInteractingPairsExcludeRotorAdjacentAtoms(t *testing.T) {
	text := strings.Join([]string{
		"ROOT",
		atomLine(1, 0, 0, 0, "C"),
		"ENDROOT",
		branchLine(1, 2),
		atomLine(2, 1.5, 0, 0, "C"),
		atomLine(3, 2.5, 0.5, 0, "C"),
		endBranchLine(1, 2),
		"TORSDOF 1",
	}, "\n")

	lig, err := Parse(strings.NewReader(text), "pairs.pdbqt", testScoringFunction())
	require.NoError(t, err)

	for _, p := range lig.Pairs {
		assert.Less(t, p.I, p.J)
		// atom 0 (rotorX) - atom 1 (rotorY) are directly bonded (1 bond
		// step apart), well within the 3-bond exclusion radius, and must
		// never appear as an interacting pair.
		assert.Falsef(t, p.I == 0 && p.J == 1, "rotor bond endpoints must be excluded")
	}
}
