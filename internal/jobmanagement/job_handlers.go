package jobmanagement

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"license-plate-eval-platform/internal/coreengine/evaluationengine"
	"license-plate-eval-platform/internal/coreengine/metricscalculator"
	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/reporting"
)

// CreatePlateJobRequest defines the expected payload for creating a plate
// evaluation job.
type CreatePlateJobRequest struct {
	JobName         string          `json:"job_name"` // Optional, can be empty
	TestCaseIDs     []int           `json:"test_case_ids" binding:"required,min=1"`
	VendorConfigIDs []int           `json:"vendor_config_ids" binding:"required,min=1"`
	Parameters      json.RawMessage `json:"parameters"` // Optional, can be null or valid JSON
}

// CreatePlateJobHandler handles requests to create and run a new plate
// evaluation job.
func CreatePlateJobHandler(c *gin.Context) {
	var req CreatePlateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	// Validate Parameters if provided
	if len(req.Parameters) > 0 {
		if !json.Valid(req.Parameters) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "parameters field contains invalid JSON"})
			return
		}
	} else {
		// If parameters are not provided or empty, explicitly set to null for DB
		req.Parameters = json.RawMessage("null")
	}

	jobNameSQL := sql.NullString{String: req.JobName, Valid: req.JobName != ""}

	service := NewJobService() // In a real app, this might be injected
	job, err := service.CreateAndRunPlateJob(jobNameSQL, req.TestCaseIDs, req.VendorConfigIDs, req.Parameters)

	if err != nil {
		if job != nil && job.Status == JobStatusFailed {
			// The job record exists but execution failed
			c.JSON(http.StatusAccepted, gin.H{
				"message": "Job initiated but failed during execution.",
				"job":     job,
				"detail":  err.Error(),
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create or run plate job: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, job) // 201 Created, and processing finished (synchronously)
}

// GetJobHandler handles requests to retrieve a specific evaluation job by its ID.
func GetJobHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	job, err := datastore.GetEvaluationJob(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler handles requests to list evaluation jobs, optionally filtered by job_type.
func ListJobsHandler(c *gin.Context) {
	jobType := c.Query("job_type") // e.g., /jobs?job_type=PLATE_OCR

	jobs, err := datastore.ListEvaluationJobs(jobType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}

	if jobs == nil {
		jobs = []*datastore.EvaluationJob{} // Return empty array instead of null
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJobResultsHandler handles requests to retrieve the raw per-item
// evaluation results for a specific job ID.
func GetJobResultsHandler(c *gin.Context) {
	jobID, ok := jobIDFromPath(c)
	if !ok {
		return
	}

	results, err := datastore.GetPlateEvaluationResultsForJob(jobID)
	if err != nil {
		// The job exists, but results couldn't be fetched.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results for job: " + err.Error()})
		return
	}

	if results == nil {
		results = []*datastore.PlateEvaluationResult{} // Return empty array
	}

	c.JSON(http.StatusOK, results)
}

// GetJobSummaryHandler recomputes the aggregate metrics of a job from its
// stored per-item results.
func GetJobSummaryHandler(c *gin.Context) {
	jobID, ok := jobIDFromPath(c)
	if !ok {
		return
	}

	results, err := itemResultsForJob(jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build summary for job: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, evaluationengine.Summarize(results))
}

// GetJobReportCSVHandler streams a job's results as a CSV download.
func GetJobReportCSVHandler(c *gin.Context) {
	jobID, ok := jobIDFromPath(c)
	if !ok {
		return
	}

	results, err := itemResultsForJob(jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report for job: " + err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"job_%d_report.csv\"", jobID))
	if err := reporting.WriteCSV(c.Writer, results); err != nil {
		// Headers are already sent; nothing left to do but log.
		log.Printf("Failed to stream CSV report for job ID %d: %v", jobID, err)
	}
}

// jobIDFromPath parses and validates the :id path parameter and confirms the
// job exists. On failure it writes the error response and returns ok=false.
func jobIDFromPath(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	jobID, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return 0, false
	}

	_, err = datastore.GetEvaluationJob(jobID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Job with ID %d not found", jobID)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify job existence: " + err.Error()})
		}
		return 0, false
	}

	return jobID, true
}

// itemResultsForJob reconstructs scored item results from the persisted rows
// of a job, joining each row back to its test case for the image path and
// ground truth. Test cases deleted since the run are kept with what the row
// alone can provide.
func itemResultsForJob(jobID int) ([]evaluationengine.ItemResult, error) {
	rows, err := datastore.GetPlateEvaluationResultsForJob(jobID)
	if err != nil {
		return nil, err
	}

	testCases := make(map[int]*datastore.PlateTestCase)
	results := make([]evaluationengine.ItemResult, 0, len(rows))
	for _, row := range rows {
		tc, cached := testCases[row.PlateTestCaseID]
		if !cached {
			tc, err = datastore.GetPlateTestCase(row.PlateTestCaseID)
			if err != nil {
				log.Printf("Test case ID %d for job ID %d no longer resolvable: %v", row.PlateTestCaseID, jobID, err)
				tc = nil
			}
			testCases[row.PlateTestCaseID] = tc
		}

		res := evaluationengine.ItemResult{
			ItemID:              strconv.Itoa(row.PlateTestCaseID),
			Candidate:           row.PredictedPlate.String,
			RawResponse:         row.RawModelResponse.String,
			Status:              evaluationengine.PredictionStatus(row.PredictionStatus.String),
			ErrorRate:           row.CER.Float64,
			LevenshteinDistance: int(row.LevenshteinDistance.Int64),
			LatencyMs:           row.LatencyMs.Int64,
			Breakdown: metricscalculator.AlignmentBreakdown{
				Substitutions: uint(row.Substitutions.Int64),
				Deletions:     uint(row.Deletions.Int64),
				Insertions:    uint(row.Insertions.Int64),
			},
		}
		if tc != nil {
			res.ImageRef = tc.ImageFilePath
			res.Reference = tc.GroundTruthPlate.String
			res.Breakdown.ReferenceLength = uint(utf8.RuneCountInString(res.Reference))
		} else {
			res.ImageRef = res.ItemID
		}
		results = append(results, res)
	}

	return results, nil
}
