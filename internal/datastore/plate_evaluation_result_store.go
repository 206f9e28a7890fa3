package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreatePlateEvaluationResult inserts a new plate evaluation result into the database.
func CreatePlateEvaluationResult(result *PlateEvaluationResult) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO plate_evaluation_results (
			job_id, plate_test_case_id, vendor_config_id,
			raw_model_response, predicted_plate, prediction_status,
			cer, substitutions, deletions, insertions,
			levenshtein_distance, exact_match, latency_ms,
			raw_vendor_response, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	result.CreatedAt = time.Now()

	var id int
	err := DB.QueryRow(
		query,
		result.JobID,
		result.PlateTestCaseID,
		result.VendorConfigID,
		result.RawModelResponse,
		result.PredictedPlate,
		result.PredictionStatus,
		result.CER,
		result.Substitutions,
		result.Deletions,
		result.Insertions,
		result.LevenshteinDistance,
		result.ExactMatch,
		result.LatencyMs,
		jsonOrNull(result.RawVendorResponse),
		result.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create plate evaluation result: %w", err)
	}
	result.ID = id
	return id, nil
}

// GetPlateEvaluationResultsForJob retrieves all plate evaluation results for a
// given job ID, in insertion order.
func GetPlateEvaluationResultsForJob(jobID int) ([]*PlateEvaluationResult, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, job_id, plate_test_case_id, vendor_config_id,
		       raw_model_response, predicted_plate, prediction_status,
		       cer, substitutions, deletions, insertions,
		       levenshtein_distance, exact_match, latency_ms,
		       raw_vendor_response, created_at
		FROM plate_evaluation_results
		WHERE job_id = $1
		ORDER BY id ASC
	`

	rows, err := DB.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plate evaluation results for job ID %d: %w", jobID, err)
	}
	defer rows.Close()

	results := []*PlateEvaluationResult{}
	for rows.Next() {
		res := &PlateEvaluationResult{}
		var rawVendorJSON []byte
		if err := rows.Scan(
			&res.ID,
			&res.JobID,
			&res.PlateTestCaseID,
			&res.VendorConfigID,
			&res.RawModelResponse,
			&res.PredictedPlate,
			&res.PredictionStatus,
			&res.CER,
			&res.Substitutions,
			&res.Deletions,
			&res.Insertions,
			&res.LevenshteinDistance,
			&res.ExactMatch,
			&res.LatencyMs,
			&rawVendorJSON,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plate evaluation result row for job ID %d: %w", jobID, err)
		}
		if rawVendorJSON != nil && string(rawVendorJSON) != "null" {
			res.RawVendorResponse = json.RawMessage(rawVendorJSON)
		}
		results = append(results, res)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for plate evaluation results (job ID %d): %w", jobID, err)
	}

	return results, nil
}
