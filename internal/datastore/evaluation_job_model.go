package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// EvaluationJob maps to the evaluation_jobs table in the database.
type EvaluationJob struct {
	ID              int             `json:"id"`
	JobName         sql.NullString  `json:"job_name,omitempty"`
	JobType         string          `json:"job_type"`             // e.g., PLATE_OCR
	Status          string          `json:"status"`               // PENDING, RUNNING, COMPLETED, FAILED
	VendorConfigIDs json.RawMessage `json:"vendor_config_ids"`    // JSONB array of vendor_config_id
	TestCaseIDs     json.RawMessage `json:"test_case_ids"`        // JSONB array of plate_test_case_id
	Parameters      json.RawMessage `json:"parameters,omitempty"` // Per-run parameters, e.g., {"model": "...", "delay_ms": 500}
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	StartedAt       sql.NullTime    `json:"started_at,omitempty"`
	CompletedAt     sql.NullTime    `json:"completed_at,omitempty"`
}

// MarshalIntSliceToJSON converts an ID slice into a JSONB-ready value.
func MarshalIntSliceToJSON(ids []int) (json.RawMessage, error) {
	if ids == nil {
		return json.RawMessage("[]"), nil
	}
	bytes, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(bytes), nil
}
