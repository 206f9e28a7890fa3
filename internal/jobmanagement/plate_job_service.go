package jobmanagement

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
	"license-plate-eval-platform/internal/datastore"
)

// JobService provides methods for managing evaluation jobs.
type JobService struct {
}

// NewJobService creates a new JobService.
func NewJobService() *JobService {
	return &JobService{}
}

const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
	JobTypePlateOCR    = "PLATE_OCR"
)

// CreateAndRunPlateJob creates a new plate evaluation job and runs it
// synchronously. The returned job reflects the final persisted state where
// possible.
func (s *JobService) CreateAndRunPlateJob(jobName sql.NullString, testCaseIDs []int, vendorConfigIDs []int, params json.RawMessage) (*datastore.EvaluationJob, error) {
	log.Printf("CreateAndRunPlateJob called: Name: %s, TC_IDs: %v, Vendor_IDs: %v", jobName.String, testCaseIDs, vendorConfigIDs)

	// 1. Construct and store the initial job with "PENDING" status.
	vendorConfigIDsJSON, err := datastore.MarshalIntSliceToJSON(vendorConfigIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vendor_config_ids: %w", err)
	}
	testCaseIDsJSON, err := datastore.MarshalIntSliceToJSON(testCaseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal test_case_ids: %w", err)
	}

	job := &datastore.EvaluationJob{
		JobName:         jobName,
		JobType:         JobTypePlateOCR,
		Status:          JobStatusPending,
		VendorConfigIDs: vendorConfigIDsJSON,
		TestCaseIDs:     testCaseIDsJSON,
		Parameters:      params, // Assumed to be valid JSON or null
	}

	jobID, err := datastore.CreateEvaluationJob(job)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation job in datastore: %w", err)
	}
	job.ID = jobID
	log.Printf("Job ID %d created with PENDING status.", jobID)

	// 2. Update job status to "RUNNING" and set started_at.
	err = datastore.UpdateEvaluationJobStatus(jobID, JobStatusRunning)
	if err != nil {
		log.Printf("Failed to update job ID %d status to RUNNING: %v. Attempting to mark as FAILED.", jobID, err)
		_ = datastore.UpdateEvaluationJobStatus(jobID, JobStatusFailed)
		_ = datastore.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{}, sql.NullTime{Time: time.Now(), Valid: true})
		job.Status = JobStatusFailed
		return job, fmt.Errorf("failed to update job status to RUNNING: %w", err)
	}
	job.Status = JobStatusRunning

	startTime := time.Now()
	err = datastore.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{Time: startTime, Valid: true}, sql.NullTime{})
	if err != nil {
		log.Printf("Failed to update job ID %d started_at timestamp: %v. Attempting to mark as FAILED.", jobID, err)
		_ = datastore.UpdateEvaluationJobStatus(jobID, JobStatusFailed)
		_ = datastore.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{}, sql.NullTime{Time: time.Now(), Valid: true})
		job.Status = JobStatusFailed
		return job, fmt.Errorf("failed to update job started_at: %w", err)
	}
	job.StartedAt = sql.NullTime{Time: startTime, Valid: true}
	log.Printf("Job ID %d status updated to RUNNING, started_at set.", jobID)

	// 3. Call the core evaluation engine. Synchronous for MVP.
	evalErr := evaluationengine.RunPlateEvaluation(jobID, testCaseIDs, vendorConfigIDs, params)
	completedTime := time.Now()

	// 4. Update job status based on evaluation outcome.
	if evalErr != nil {
		log.Printf("Plate evaluation for Job ID %d failed: %v", jobID, evalErr)
		job.Status = JobStatusFailed
		err = datastore.UpdateEvaluationJobStatus(jobID, JobStatusFailed)
		if err != nil {
			log.Printf("CRITICAL: Failed to update job ID %d status to FAILED after evaluation error: %v", jobID, err)
		}
	} else {
		log.Printf("Plate evaluation for Job ID %d completed successfully.", jobID)
		job.Status = JobStatusCompleted
		err = datastore.UpdateEvaluationJobStatus(jobID, JobStatusCompleted)
		if err != nil {
			log.Printf("CRITICAL: Failed to update job ID %d status to COMPLETED: %v", jobID, err)
		}
	}
	job.CompletedAt = sql.NullTime{Time: completedTime, Valid: true}

	// Update completed_at timestamp regardless of success or failure
	tsErr := datastore.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{}, sql.NullTime{Time: completedTime, Valid: true})
	if tsErr != nil {
		log.Printf("CRITICAL: Failed to update job ID %d completed_at timestamp: %v", jobID, tsErr)
	}

	// Fetch the final state of the job to return complete information
	finalJob, fetchErr := datastore.GetEvaluationJob(jobID)
	if fetchErr != nil {
		log.Printf("Failed to fetch final job state for ID %d: %v. Returning local job object.", jobID, fetchErr)
		return job, evalErr
	}

	return finalJob, evalErr
}
