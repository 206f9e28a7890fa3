package reporting

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
)

func TestWriteCSV(t *testing.T) {
	results := []evaluationengine.ItemResult{
		{ImageRef: "car_001.jpg", Reference: "B1234ABC", Candidate: "B1234ABC", ErrorRate: 0},
		{ImageRef: "car_002.jpg", Reference: "X99Y", Candidate: "X98Y", ErrorRate: 0.25},
		{ImageRef: "car_003.jpg", Reference: "", Candidate: "C7D", ErrorRate: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "image,ground_truth,prediction,cer_score", lines[0])
	assert.Equal(t, "car_001.jpg,B1234ABC,B1234ABC,0.0000", lines[1])
	assert.Equal(t, "car_002.jpg,X99Y,X98Y,0.2500", lines[2])
	assert.Equal(t, "car_003.jpg,,C7D,1.0000", lines[3])
}

func TestWriteCSVNoResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "image,ground_truth,prediction,cer_score\n", buf.String())
}

func TestWriteCSVQuotesSpecialCharacters(t *testing.T) {
	results := []evaluationengine.ItemResult{
		{ImageRef: "lot a, row 1.jpg", Reference: "A1B", Candidate: "A1B", ErrorRate: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))
	assert.Contains(t, buf.String(), `"lot a, row 1.jpg"`)
}

func TestWriteSummary(t *testing.T) {
	metrics := evaluationengine.SummaryMetrics{
		TotalItems:         3,
		ItemsWithReference: 2,
		CorrectPredictions: 1,
		AverageErrorRate:   0.4166666667,
		ExactMatchAccuracy: 0.5,
		TotalSubstitutions: 1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, metrics))

	out := buf.String()
	assert.Contains(t, out, "SUMMARY RESULTS")
	assert.Contains(t, out, "Total Images Processed: 3")
	assert.Contains(t, out, "Images with Ground Truth: 2")
	assert.Contains(t, out, "Average CER: 0.4167")
	assert.Contains(t, out, "Accuracy (Exact Match): 0.5000 (50.00%)")
	assert.Contains(t, out, "Correct Predictions: 1/2")
	assert.Contains(t, out, "Total Substitutions: 1")
	assert.Contains(t, out, "Total Deletions: 0")
	assert.Contains(t, out, "Total Insertions: 0")
}
