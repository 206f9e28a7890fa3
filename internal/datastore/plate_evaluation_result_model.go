package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PlateEvaluationResult maps to the plate_evaluation_results table.
// One row per (job, test case, vendor) combination.
type PlateEvaluationResult struct {
	ID                  int             `json:"id"`
	JobID               int             `json:"job_id"`
	PlateTestCaseID     int             `json:"plate_test_case_id"`
	VendorConfigID      int             `json:"vendor_config_id"`
	RawModelResponse    sql.NullString  `json:"raw_model_response,omitempty"` // Model text before normalization
	PredictedPlate      sql.NullString  `json:"predicted_plate,omitempty"`    // Normalized candidate
	PredictionStatus    sql.NullString  `json:"prediction_status,omitempty"`  // OK, UNAVAILABLE, EMPTY
	CER                 sql.NullFloat64 `json:"cer,omitempty"`
	Substitutions       sql.NullInt64   `json:"substitutions,omitempty"`
	Deletions           sql.NullInt64   `json:"deletions,omitempty"`
	Insertions          sql.NullInt64   `json:"insertions,omitempty"`
	LevenshteinDistance sql.NullInt64   `json:"levenshtein_distance,omitempty"`
	ExactMatch          sql.NullBool    `json:"exact_match,omitempty"`
	LatencyMs           sql.NullInt64   `json:"latency_ms,omitempty"`
	RawVendorResponse   json.RawMessage `json:"raw_vendor_response,omitempty"` // Full vendor response body
	CreatedAt           time.Time       `json:"created_at"`
}
