package evaluationengine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"license-plate-eval-platform/internal/coreengine/vendoradapters"
	"license-plate-eval-platform/internal/datastore"
)

// defaultInterItemDelay is the minimum pause between predictor calls, to avoid
// overloading a locally hosted model endpoint. Overridable per job via the
// "delay_ms" parameter.
const defaultInterItemDelay = 500 * time.Millisecond

// jobParameters are the per-run knobs accepted in EvaluationJob.Parameters.
type jobParameters struct {
	Model   string `json:"model,omitempty"`
	DelayMs *int64 `json:"delay_ms,omitempty"`
}

// RunPlateEvaluation executes plate-reading evaluations for the given test
// cases against each specified vendor, persisting one result row per
// (test case, vendor) pair. Per-item prediction failures are isolated and
// scored against an empty candidate; only an empty test case set aborts the
// job, reported as ErrNoItems.
func RunPlateEvaluation(jobID int, testCaseIDs []int, vendorConfigIDs []int, rawParams json.RawMessage) error {
	log.Printf("Starting plate evaluation for Job ID: %d", jobID)
	log.Printf("Test Case IDs: %v, Vendor Config IDs: %v", testCaseIDs, vendorConfigIDs)

	if datastore.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	params := parseJobParameters(rawParams)
	delay := defaultInterItemDelay
	if params.DelayMs != nil {
		delay = time.Duration(*params.DelayMs) * time.Millisecond
	}

	// Build the batch once; it is shared across vendors.
	var items []SourceItem
	var caseIDs []int // parallel to items
	for _, testCaseID := range testCaseIDs {
		testCase, err := datastore.GetPlateTestCase(testCaseID)
		if err != nil {
			log.Printf("Error fetching plate test case ID %d: %v. Skipping this test case for job %d.", testCaseID, err, jobID)
			continue
		}
		items = append(items, SourceItem{
			ID:        strconv.Itoa(testCase.ID),
			ImageRef:  testCase.ImageFilePath,
			Reference: testCase.GroundTruthPlate.String,
		})
		caseIDs = append(caseIDs, testCase.ID)
	}
	if len(items) == 0 {
		return fmt.Errorf("job %d: %w", jobID, ErrNoItems)
	}

	adapterParams := make(map[string]interface{})
	if params.Model != "" {
		adapterParams["model"] = params.Model
	}

	for _, vendorConfigID := range vendorConfigIDs {
		vendorConfig, err := datastore.GetVendorConfig(vendorConfigID)
		if err != nil {
			log.Printf("Error fetching vendor config ID %d: %v. Skipping this vendor for job %d.", vendorConfigID, err, jobID)
			continue
		}
		log.Printf("Evaluating %d test cases against vendor %s (ID: %d)", len(items), vendorConfig.Name, vendorConfig.ID)

		adapter, err := vendoradapters.GetVLMAdapter(vendorConfig)
		if err != nil {
			log.Printf("Error getting VLM adapter for vendor %s (ID: %d): %v. Skipping this vendor for job %d.", vendorConfig.Name, vendorConfig.ID, err, jobID)
			continue
		}

		// The adapter also returns the full vendor response body, which the
		// core pipeline does not carry; capture it per call. Items run strictly
		// sequentially, so call order matches result order.
		var vendorResponses []string
		predict := func(ctx context.Context, imageRef string) (string, error) {
			rawText, rawResponse, predErr := adapter.Predict(ctx, imageRef, adapterParams, vendorConfig)
			vendorResponses = append(vendorResponses, rawResponse)
			return rawText, predErr
		}

		evaluator := NewEvaluator(predict, delay)
		results, err := evaluator.EvaluateBatch(context.Background(), items)
		if err != nil {
			log.Printf("Batch evaluation stopped early for vendor %s, job %d: %v. Persisting %d partial results.", vendorConfig.Name, jobID, err, len(results))
		}

		for i, res := range results {
			row := resultRow(jobID, caseIDs[i], vendorConfig.ID, res)
			if i < len(vendorResponses) && vendorResponses[i] != "" {
				row.RawVendorResponse = json.RawMessage(vendorResponses[i])
			}
			if _, dbErr := datastore.CreatePlateEvaluationResult(row); dbErr != nil {
				log.Printf("Error saving plate evaluation result for TC ID %d, vendor ID %d, job ID %d: %v", caseIDs[i], vendorConfig.ID, jobID, dbErr)
			}
		}

		summary := Summarize(results)
		log.Printf("Vendor %s, job %d: %d items, avg CER %.4f, exact match %.4f (%d/%d)",
			vendorConfig.Name, jobID, summary.TotalItems, summary.AverageErrorRate,
			summary.ExactMatchAccuracy, summary.CorrectPredictions, summary.ItemsWithReference)
	}

	log.Printf("Plate evaluation finished for Job ID: %d", jobID)
	return nil
}

func resultRow(jobID, testCaseID, vendorConfigID int, res ItemResult) *datastore.PlateEvaluationResult {
	row := &datastore.PlateEvaluationResult{
		JobID:               jobID,
		PlateTestCaseID:     testCaseID,
		VendorConfigID:      vendorConfigID,
		PredictedPlate:      sql.NullString{String: res.Candidate, Valid: true},
		PredictionStatus:    sql.NullString{String: string(res.Status), Valid: true},
		CER:                 sql.NullFloat64{Float64: res.ErrorRate, Valid: true},
		LevenshteinDistance: sql.NullInt64{Int64: int64(res.LevenshteinDistance), Valid: true},
		LatencyMs:           sql.NullInt64{Int64: res.LatencyMs, Valid: true},
	}
	if res.RawResponse != "" {
		row.RawModelResponse = sql.NullString{String: res.RawResponse, Valid: true}
	}
	if res.Reference != "" {
		// Operation counts only mean something against known ground truth.
		row.Substitutions = sql.NullInt64{Int64: int64(res.Breakdown.Substitutions), Valid: true}
		row.Deletions = sql.NullInt64{Int64: int64(res.Breakdown.Deletions), Valid: true}
		row.Insertions = sql.NullInt64{Int64: int64(res.Breakdown.Insertions), Valid: true}
		row.ExactMatch = sql.NullBool{Bool: res.Reference == res.Candidate, Valid: true}
	}
	return row
}

func parseJobParameters(raw json.RawMessage) jobParameters {
	var params jobParameters
	if len(raw) == 0 || string(raw) == "null" {
		return params
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		log.Printf("Ignoring malformed job parameters: %v", err)
	}
	return params
}
