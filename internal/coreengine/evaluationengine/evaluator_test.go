package evaluationengine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-plate-eval-platform/internal/coreengine/platenormalizer"
)

func staticPredictor(responses map[string]string, failFor map[string]bool) PredictorFunc {
	return func(ctx context.Context, imageRef string) (string, error) {
		if failFor[imageRef] {
			return "", errors.New("endpoint unreachable")
		}
		return responses[imageRef], nil
	}
}

func TestEvaluateBatchEmptyInput(t *testing.T) {
	evaluator := NewEvaluator(staticPredictor(nil, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Nil(t, results)

	results, err = evaluator.EvaluateBatch(context.Background(), []SourceItem{})
	assert.ErrorIs(t, err, ErrNoItems)
	assert.Nil(t, results)
}

func TestEvaluateBatchPreservesInputOrder(t *testing.T) {
	items := []SourceItem{
		{ID: "3", ImageRef: "c.jpg", Reference: "C3C"},
		{ID: "1", ImageRef: "a.jpg", Reference: "A1A"},
		{ID: "2", ImageRef: "b.jpg", Reference: "B2B"},
	}
	responses := map[string]string{
		"c.jpg": "C 3 C",
		"a.jpg": "A 1 A",
		"b.jpg": "B 2 B",
	}
	evaluator := NewEvaluator(staticPredictor(responses, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "3", results[0].ItemID)
	assert.Equal(t, "1", results[1].ItemID)
	assert.Equal(t, "2", results[2].ItemID)
	for i, res := range results {
		assert.Equal(t, items[i].Reference, res.Candidate, "item %s", res.ItemID)
		assert.Equal(t, PredictionOK, res.Status)
		assert.Equal(t, 0.0, res.ErrorRate)
	}
}

func TestEvaluateBatchIsolatesPredictorFailures(t *testing.T) {
	items := []SourceItem{
		{ID: "1", ImageRef: "ok.jpg", Reference: "B1234ABC"},
		{ID: "2", ImageRef: "broken.jpg", Reference: "X99Y"},
		{ID: "3", ImageRef: "ok2.jpg", Reference: "C7D"},
	}
	responses := map[string]string{
		"ok.jpg":  `"B 1234 ABC"`,
		"ok2.jpg": "C 7 D",
	}
	evaluator := NewEvaluator(staticPredictor(responses, map[string]bool{"broken.jpg": true}), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, PredictionOK, results[0].Status)
	assert.Equal(t, "B1234ABC", results[0].Candidate)

	// The failed item is scored against an empty candidate, not dropped.
	failed := results[1]
	assert.Equal(t, PredictionUnavailable, failed.Status)
	assert.Equal(t, "", failed.Candidate)
	assert.Equal(t, "", failed.RawResponse)
	assert.Equal(t, uint(4), failed.Breakdown.Deletions)
	assert.Equal(t, 1.0, failed.ErrorRate)

	assert.Equal(t, PredictionOK, results[2].Status)
	assert.Equal(t, "C7D", results[2].Candidate)
}

func TestEvaluateBatchEmptyResponseStatus(t *testing.T) {
	items := []SourceItem{{ID: "1", ImageRef: "blank.jpg", Reference: "B1A"}}
	responses := map[string]string{"blank.jpg": "   "}
	evaluator := NewEvaluator(staticPredictor(responses, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, PredictionEmpty, results[0].Status)
	assert.Equal(t, "", results[0].Candidate)
	assert.Equal(t, 1.0, results[0].ErrorRate)
}

func TestEvaluateBatchNoReferenceItem(t *testing.T) {
	items := []SourceItem{{ID: "1", ImageRef: "mystery.jpg", Reference: ""}}
	responses := map[string]string{"mystery.jpg": "B 1234 ABC"}
	evaluator := NewEvaluator(staticPredictor(responses, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Degenerate scoring against an empty reference: everything is an insertion.
	res := results[0]
	assert.Equal(t, PredictionOK, res.Status)
	assert.Equal(t, "B1234ABC", res.Candidate)
	assert.Equal(t, uint(8), res.Breakdown.Insertions)
	assert.Equal(t, uint(0), res.Breakdown.ReferenceLength)
	assert.Equal(t, 1.0, res.ErrorRate)
}

func TestEvaluateBatchNormalizationKinds(t *testing.T) {
	items := []SourceItem{
		{ID: "1", ImageRef: "clean.jpg", Reference: "B1234ABC"},
		{ID: "2", ImageRef: "noisy.jpg", Reference: "B1234ABC"},
	}
	responses := map[string]string{
		"clean.jpg": "The plate is B 1234 ABC.",
		"noisy.jpg": "no recognizable plate",
	}
	evaluator := NewEvaluator(staticPredictor(responses, nil), 0)

	results, err := evaluator.EvaluateBatch(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, platenormalizer.PatternMatched, results[0].NormalizationKind)
	assert.Equal(t, platenormalizer.FallbackFiltered, results[1].NormalizationKind)
}

func TestEvaluateBatchContextCancellationReturnsPartial(t *testing.T) {
	items := make([]SourceItem, 5)
	for i := range items {
		items[i] = SourceItem{ID: fmt.Sprintf("%d", i+1), ImageRef: fmt.Sprintf("%d.jpg", i+1), Reference: "A1B"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	predict := func(_ context.Context, _ string) (string, error) {
		cancel()
		return "A 1 B", nil
	}

	// The burst token admits the first item immediately; the throttle wait for
	// the second item then observes the cancellation.
	evaluator := NewEvaluator(predict, 10*time.Second)
	results, err := evaluator.EvaluateBatch(ctx, items)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoItems)
	assert.Equal(t, 1, len(results))
}
