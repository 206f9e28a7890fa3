package metricscalculator

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// AlignmentBreakdown holds the per-operation counts of an alignment between a
// ground-truth plate and a predicted candidate.
// Invariant: Substitutions + Deletions + Insertions == TotalErrors().
type AlignmentBreakdown struct {
	Substitutions   uint `json:"substitutions"`
	Deletions       uint `json:"deletions"`
	Insertions      uint `json:"insertions"`
	ReferenceLength uint `json:"reference_length"`
}

// TotalErrors returns the total number of edit operations in the breakdown.
func (b AlignmentBreakdown) TotalErrors() uint {
	return b.Substitutions + b.Deletions + b.Insertions
}

// CalculatePlateCER calculates the Character Error Rate (CER) between a
// ground-truth plate and a predicted candidate.
// CER = (Substitutions + Deletions + Insertions) / Number of characters in ground truth
func CalculatePlateCER(groundTruth string, prediction string) float64 {
	_, cer := CalculateDetailedPlateCER(groundTruth, prediction)
	return cer
}

// CalculateDetailedPlateCER calculates the CER along with the per-operation
// breakdown that produced it.
//
// An empty ground truth is not an error: the breakdown degenerates to
// all-insertions with reference length 0, and the rate is 1.0 when the
// prediction is non-empty, 0.0 when both are empty.
//
// For a non-empty ground truth the counts come from the greedy
// longest-matching-blocks alignment (see Opcodes), where a replace opcode
// contributes the larger of its two range lengths. That makes the totals
// diverge from true Levenshtein distance for some inputs; the divergence is
// intentional and load-bearing for comparability with historical results.
// The rate is not clamped: a prediction much longer than the ground truth can
// score above 1.0.
func CalculateDetailedPlateCER(groundTruth string, prediction string) (AlignmentBreakdown, float64) {
	if groundTruth == "" {
		breakdown := AlignmentBreakdown{
			Insertions:      uint(len([]rune(prediction))),
			ReferenceLength: 0,
		}
		if prediction == "" {
			return breakdown, 0.0
		}
		return breakdown, 1.0
	}

	refLen := uint(len([]rune(groundTruth)))
	breakdown := AlignmentBreakdown{ReferenceLength: refLen}

	for _, op := range Opcodes(groundTruth, prediction) {
		switch op.Tag {
		case OpReplace:
			// For replace, take the maximum of the two range lengths.
			refSpan := op.I2 - op.I1
			candSpan := op.J2 - op.J1
			if candSpan > refSpan {
				breakdown.Substitutions += uint(candSpan)
			} else {
				breakdown.Substitutions += uint(refSpan)
			}
		case OpDelete:
			breakdown.Deletions += uint(op.I2 - op.I1)
		case OpInsert:
			breakdown.Insertions += uint(op.J2 - op.J1)
		}
	}

	cer := float64(breakdown.TotalErrors()) / float64(refLen)
	return breakdown, cer
}

// CalculateLevenshteinDistance computes the true minimum edit distance between
// ground truth and prediction, operating on runes. It is reported alongside the
// CER as a supplementary metric and is never used to derive the CER itself.
func CalculateLevenshteinDistance(groundTruth string, prediction string) int {
	// DefaultOptions costs substitutions at 2; unit costs give the plain
	// edit distance.
	options := levenshtein.Options{
		InsCost: 1,
		DelCost: 1,
		SubCost: 1,
		Matches: levenshtein.IdenticalRunes,
	}
	return levenshtein.DistanceForStrings([]rune(groundTruth), []rune(prediction), options)
}
