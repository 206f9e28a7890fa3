package evaluationengine

// SummaryMetrics is the aggregate view of an evaluation run. It is derived
// from a result collection and can be recomputed at any time; it is never
// stored independently of its source results.
type SummaryMetrics struct {
	TotalItems           int     `json:"total_items"`
	ItemsWithReference   int     `json:"items_with_reference"`
	CorrectPredictions   int     `json:"correct_predictions"`
	AverageErrorRate     float64 `json:"average_error_rate"`
	ExactMatchAccuracy   float64 `json:"exact_match_accuracy"`
	TotalSubstitutions   uint    `json:"total_substitutions"`
	TotalDeletions       uint    `json:"total_deletions"`
	TotalInsertions      uint    `json:"total_insertions"`
	TotalReferenceLength uint    `json:"total_reference_length"`
}

// Summarize reduces a result collection into summary metrics.
//
// The average error rate runs over ALL items, including those without a
// reference. Exact-match accuracy and the operation totals only consider items
// with a non-empty reference: an item with no ground truth can never count as
// correct, and its degenerate all-insertions breakdown would distort the
// operation totals. An empty input yields all-zero metrics.
func Summarize(results []ItemResult) SummaryMetrics {
	metrics := SummaryMetrics{TotalItems: len(results)}
	if len(results) == 0 {
		return metrics
	}

	var totalErrorRate float64
	for _, res := range results {
		totalErrorRate += res.ErrorRate

		if res.Reference == "" {
			continue
		}
		metrics.ItemsWithReference++
		if res.Reference == res.Candidate {
			metrics.CorrectPredictions++
		}
		metrics.TotalSubstitutions += res.Breakdown.Substitutions
		metrics.TotalDeletions += res.Breakdown.Deletions
		metrics.TotalInsertions += res.Breakdown.Insertions
		metrics.TotalReferenceLength += res.Breakdown.ReferenceLength
	}

	metrics.AverageErrorRate = totalErrorRate / float64(len(results))
	if metrics.ItemsWithReference > 0 {
		metrics.ExactMatchAccuracy = float64(metrics.CorrectPredictions) / float64(metrics.ItemsWithReference)
	}
	return metrics
}
