package evaluationengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-plate-eval-platform/internal/coreengine/metricscalculator"
)

func TestSummarizeEmpty(t *testing.T) {
	metrics := Summarize(nil)
	assert.Equal(t, SummaryMetrics{}, metrics)

	metrics = Summarize([]ItemResult{})
	assert.Equal(t, SummaryMetrics{}, metrics)
}

func TestSummarizeMixedBatch(t *testing.T) {
	results := []ItemResult{
		{
			Reference: "B1234ABC",
			Candidate: "B1234ABC",
			Status:    PredictionOK,
			Breakdown: metricscalculator.AlignmentBreakdown{ReferenceLength: 8},
			ErrorRate: 0,
		},
		{
			Reference: "X99Y",
			Candidate: "X98Y",
			Status:    PredictionOK,
			Breakdown: metricscalculator.AlignmentBreakdown{Substitutions: 1, ReferenceLength: 4},
			ErrorRate: 0.25,
		},
		{
			// No ground truth: counts toward the average rate only.
			Reference: "",
			Candidate: "C7D",
			Status:    PredictionOK,
			Breakdown: metricscalculator.AlignmentBreakdown{Insertions: 3},
			ErrorRate: 1.0,
		},
	}

	metrics := Summarize(results)
	assert.Equal(t, 3, metrics.TotalItems)
	assert.Equal(t, 2, metrics.ItemsWithReference)
	assert.Equal(t, 1, metrics.CorrectPredictions)
	assert.InDelta(t, (0+0.25+1.0)/3, metrics.AverageErrorRate, 1e-12)
	assert.InDelta(t, 0.5, metrics.ExactMatchAccuracy, 1e-12)
	assert.Equal(t, uint(1), metrics.TotalSubstitutions)
	assert.Equal(t, uint(0), metrics.TotalDeletions)
	// The insertions of the reference-less item are excluded on purpose.
	assert.Equal(t, uint(0), metrics.TotalInsertions)
	assert.Equal(t, uint(12), metrics.TotalReferenceLength)
}

func TestSummarizeAllWithoutReference(t *testing.T) {
	results := []ItemResult{
		{Candidate: "A1B", ErrorRate: 1.0},
		{Candidate: "", ErrorRate: 0.0},
	}

	metrics := Summarize(results)
	assert.Equal(t, 2, metrics.TotalItems)
	assert.Equal(t, 0, metrics.ItemsWithReference)
	assert.Equal(t, 0, metrics.CorrectPredictions)
	assert.Equal(t, 0.0, metrics.ExactMatchAccuracy)
	assert.InDelta(t, 0.5, metrics.AverageErrorRate, 1e-12)
}

func TestSummarizeEndToEnd(t *testing.T) {
	evaluator := NewEvaluator(staticPredictor(map[string]string{
		"a.jpg": "B 1234 ABC",
		"b.jpg": "Plate: X 98 Y",
	}, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), []SourceItem{
		{ID: "1", ImageRef: "a.jpg", Reference: "B1234ABC"},
		{ID: "2", ImageRef: "b.jpg", Reference: "X99Y"},
	})
	require.NoError(t, err)

	metrics := Summarize(results)
	assert.Equal(t, 2, metrics.TotalItems)
	assert.Equal(t, 2, metrics.ItemsWithReference)
	assert.Equal(t, 1, metrics.CorrectPredictions)
	assert.Equal(t, uint(1), metrics.TotalSubstitutions)
	assert.InDelta(t, 0.125, metrics.AverageErrorRate, 1e-12)
}
