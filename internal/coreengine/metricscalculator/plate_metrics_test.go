package metricscalculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDetailedPlateCERIdentical(t *testing.T) {
	for _, s := range []string{"B1234ABC", "A1B", "X"} {
		breakdown, cer := CalculateDetailedPlateCER(s, s)
		assert.Equal(t, AlignmentBreakdown{ReferenceLength: uint(len(s))}, breakdown)
		assert.Equal(t, 0.0, cer)
	}
}

func TestCalculateDetailedPlateCEREmptyGroundTruth(t *testing.T) {
	breakdown, cer := CalculateDetailedPlateCER("", "")
	assert.Equal(t, AlignmentBreakdown{}, breakdown)
	assert.Equal(t, 0.0, cer)

	breakdown, cer = CalculateDetailedPlateCER("", "ABC")
	assert.Equal(t, AlignmentBreakdown{Insertions: 3}, breakdown)
	assert.Equal(t, 1.0, cer)
}

func TestCalculateDetailedPlateCEREmptyPrediction(t *testing.T) {
	breakdown, cer := CalculateDetailedPlateCER("B1234ABC", "")
	assert.Equal(t, uint(8), breakdown.Deletions)
	assert.Equal(t, uint(0), breakdown.Substitutions)
	assert.Equal(t, uint(0), breakdown.Insertions)
	assert.Equal(t, 1.0, cer)
}

func TestCalculateDetailedPlateCERSingleSubstitution(t *testing.T) {
	breakdown, cer := CalculateDetailedPlateCER("B1234ABC", "B1234ABD")
	assert.Equal(t, uint(1), breakdown.Substitutions)
	assert.Equal(t, uint(0), breakdown.Deletions)
	assert.Equal(t, uint(0), breakdown.Insertions)
	assert.Equal(t, 0.125, cer)
}

func TestCalculateDetailedPlateCERDisjointEqualLength(t *testing.T) {
	// One replace block spanning everything: substitutions are the maximum of
	// the two lengths, not an independent insert+delete sum. This is where the
	// metric diverges from true Levenshtein distance on purpose.
	breakdown, cer := CalculateDetailedPlateCER("ABC", "XYZ")
	assert.Equal(t, uint(3), breakdown.Substitutions)
	assert.Equal(t, 1.0, cer)
}

func TestCalculateDetailedPlateCERReplaceTakesMaxRange(t *testing.T) {
	// Reference "AXB" vs candidate "AYYB": the middle is one replace opcode
	// with ranges of length 1 and 2; max is charged.
	breakdown, cer := CalculateDetailedPlateCER("AXB", "AYYB")
	assert.Equal(t, uint(2), breakdown.Substitutions)
	assert.Equal(t, uint(0), breakdown.Deletions)
	assert.Equal(t, uint(0), breakdown.Insertions)
	assert.InDelta(t, 2.0/3.0, cer, 1e-9)
}

func TestCalculatePlateCERCanExceedOne(t *testing.T) {
	cer := CalculatePlateCER("AB", "AXXXB")
	assert.Equal(t, 1.5, cer)
}

func TestBreakdownMatchesRate(t *testing.T) {
	cases := [][2]string{
		{"B1234ABC", "B1234ABD"},
		{"B1234ABC", "B1234ABC"},
		{"B1234ABC", ""},
		{"AB123CD", "XY987ZW"},
		{"D5678EFG", "D5678EFGH"},
		{"PLATE", "PALTE"},
		{"AB", "AXXXB"},
	}
	for _, c := range cases {
		breakdown, cer := CalculateDetailedPlateCER(c[0], c[1])
		total := breakdown.Substitutions + breakdown.Deletions + breakdown.Insertions
		assert.Equal(t, total, breakdown.TotalErrors())
		assert.InDelta(t, float64(total), cer*float64(len([]rune(c[0]))), 1e-9,
			"breakdown total and rate disagree for %q/%q", c[0], c[1])
	}
}

func TestCalculateLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, CalculateLevenshteinDistance("B1234ABC", "B1234ABC"))
	assert.Equal(t, 1, CalculateLevenshteinDistance("B1234ABC", "B1234ABD"))
	assert.Equal(t, 3, CalculateLevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 8, CalculateLevenshteinDistance("B1234ABC", ""))
}

func TestCERAndLevenshteinDiverge(t *testing.T) {
	// "AXB" -> "AYYB" costs 2 either way, but "AXC" -> "BXD" shows the split:
	// Levenshtein counts 2 substitutions, the block metric one replace of the
	// leading rune plus one of the trailing rune as separate blocks around the
	// shared "X".
	gtCER := CalculatePlateCER("AXC", "BXD")
	assert.InDelta(t, 2.0/3.0, gtCER, 1e-9)
	assert.Equal(t, 2, CalculateLevenshteinDistance("AXC", "BXD"))

	// Divergence case: no shared runes, unequal lengths.
	breakdown, _ := CalculateDetailedPlateCER("AB", "XYZ")
	assert.Equal(t, uint(3), breakdown.TotalErrors())
	assert.Equal(t, 3, CalculateLevenshteinDistance("AB", "XYZ"))

	// True divergence: interleaved matches force the greedy aligner above the
	// optimal count.
	longCER := CalculatePlateCER("QWERT", "TQWER")
	lev := CalculateLevenshteinDistance("QWERT", "TQWER")
	assert.Equal(t, 2, lev)
	assert.True(t, longCER*5 >= float64(lev)-1e-9)
	assert.False(t, math.IsNaN(longCER))
}
