package evaluationengine

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"

	"license-plate-eval-platform/internal/coreengine/metricscalculator"
	"license-plate-eval-platform/internal/coreengine/platenormalizer"
)

// ErrNoItems is returned when a batch contains no evaluation items at all.
// It is a distinguished outcome, not a per-item failure.
var ErrNoItems = errors.New("no evaluation items found")

// PredictionStatus records how the raw response for an item was obtained.
type PredictionStatus string

const (
	// PredictionOK means the predictor returned a usable response.
	PredictionOK PredictionStatus = "OK"
	// PredictionUnavailable means the predictor failed; the item was scored
	// against an empty candidate instead of aborting the batch.
	PredictionUnavailable PredictionStatus = "UNAVAILABLE"
	// PredictionEmpty means the predictor succeeded but normalization yielded
	// an empty candidate.
	PredictionEmpty PredictionStatus = "EMPTY"
)

// SourceItem is one entry of an evaluation batch: an identifier, the image
// reference handed to the predictor, and the known-correct plate. An empty
// Reference means no ground truth is known, which is a valid state.
type SourceItem struct {
	ID        string
	ImageRef  string
	Reference string
}

// ItemResult is the scored outcome for a single item. It is created once per
// item and never mutated afterwards.
type ItemResult struct {
	ItemID              string                              `json:"item_id"`
	ImageRef            string                              `json:"image_ref"`
	Reference           string                              `json:"reference"`
	Candidate           string                              `json:"candidate"`
	RawResponse         string                              `json:"raw_response"`
	Status              PredictionStatus                    `json:"status"`
	NormalizationKind   platenormalizer.Kind                `json:"normalization_kind"`
	Breakdown           metricscalculator.AlignmentBreakdown `json:"breakdown"`
	ErrorRate           float64                             `json:"error_rate"`
	LevenshteinDistance int                                 `json:"levenshtein_distance"`
	LatencyMs           int64                               `json:"latency_ms"`
}

// PredictorFunc obtains the raw model response for one image reference.
// It may block on network I/O and may fail; a failure is recovered per item.
type PredictorFunc func(ctx context.Context, imageRef string) (string, error)

// Evaluator runs evaluation batches: for every item, in input order, it asks
// the predictor for a raw response, normalizes it into a plate candidate, and
// scores the candidate against the reference. Items are processed strictly
// sequentially with a configurable minimum delay between predictor calls to
// respect rate limits of the model endpoint.
type Evaluator struct {
	predict PredictorFunc
	limiter *rate.Limiter
}

// NewEvaluator creates an Evaluator. delay is the minimum interval between
// consecutive predictor calls; zero or negative disables throttling.
func NewEvaluator(predict PredictorFunc, delay time.Duration) *Evaluator {
	var limiter *rate.Limiter
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
	}
	return &Evaluator{predict: predict, limiter: limiter}
}

// EvaluateBatch evaluates all items and returns one result per item, in input
// order. A predictor failure for one item never aborts the batch: the item is
// recorded with an empty candidate and scored normally. The only early exits
// are an empty item slice (ErrNoItems) and context cancellation while waiting
// on the throttle, which returns the results accumulated so far.
func (e *Evaluator) EvaluateBatch(ctx context.Context, items []SourceItem) ([]ItemResult, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return results, err
			}
		}
		results = append(results, e.evaluateItem(ctx, item))
	}
	return results, nil
}

func (e *Evaluator) evaluateItem(ctx context.Context, item SourceItem) ItemResult {
	startTime := time.Now()
	raw, err := e.predict(ctx, item.ImageRef)
	latencyMs := time.Since(startTime).Milliseconds()

	status := PredictionOK
	if err != nil {
		log.Printf("Prediction failed for item '%s' (image '%s'): %v. Scoring with empty candidate.", item.ID, item.ImageRef, err)
		raw = ""
		status = PredictionUnavailable
	}

	normalization := platenormalizer.NormalizeDetailed(raw)
	candidate := normalization.Value
	if status == PredictionOK && candidate == "" {
		status = PredictionEmpty
	}

	breakdown, errorRate := metricscalculator.CalculateDetailedPlateCER(item.Reference, candidate)

	return ItemResult{
		ItemID:              item.ID,
		ImageRef:            item.ImageRef,
		Reference:           item.Reference,
		Candidate:           candidate,
		RawResponse:         raw,
		Status:              status,
		NormalizationKind:   normalization.Kind,
		Breakdown:           breakdown,
		ErrorRate:           errorRate,
		LevenshteinDistance: metricscalculator.CalculateLevenshteinDistance(item.Reference, candidate),
		LatencyMs:           latencyMs,
	}
}
