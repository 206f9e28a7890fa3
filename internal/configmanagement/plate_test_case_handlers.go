package configmanagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/objectstore"
)

const maxUploadSize = 20 << 20 // 20 MB

// CreatePlateTestCaseHandler handles the creation of a new plate test case.
// It expects a multipart/form-data request with an image file and metadata.
func CreatePlateTestCaseHandler(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to parse multipart form: %v. Max size: %d MB", err, maxUploadSize>>20)})
		return
	}

	fileHeader, err := c.FormFile("image_file")
	if err != nil {
		if err == http.ErrMissingFile {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_file is required"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get image_file: %v", err)})
		}
		return
	}

	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Image file size exceeds limit of %d MB", maxUploadSize>>20)})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("image_file must be an image, got content type '%s'", contentType)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to open uploaded file: %v", err)})
		return
	}
	defer file.Close()

	// Upload to MinIO
	minioClient, err := objectstore.GetGlobalMinioClient()
	if err != nil {
		log.Printf("Error getting Minio client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Object storage service not available"})
		return
	}

	objectName, err := minioClient.UploadFile(context.Background(), fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		log.Printf("Error uploading file to Minio: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload image file: %v", err)})
		return
	}

	// Populate PlateTestCase struct from form data
	var tc datastore.PlateTestCase
	tc.Name = c.PostForm("name")
	tc.ImageFilePath = objectName // Set by MinIO upload

	if tc.Name == "" {
		// If name is empty, the MinIO file needs to be deleted to avoid orphaned files
		go func() {
			if err := minioClient.DeleteFile(context.Background(), objectName); err != nil {
				log.Printf("Failed to delete orphaned MinIO object '%s' after validation error: %v", objectName, err)
			}
		}()
		c.JSON(http.StatusBadRequest, gin.H{"error": "name field is required"})
		return
	}

	// Optional fields
	if regionCode := c.PostForm("region_code"); regionCode != "" {
		tc.RegionCode = sql.NullString{String: regionCode, Valid: true}
	}
	if gtPlate := c.PostForm("ground_truth_plate"); gtPlate != "" {
		tc.GroundTruthPlate = sql.NullString{String: gtPlate, Valid: true}
	}
	if desc := c.PostForm("description"); desc != "" {
		tc.Description = sql.NullString{String: desc, Valid: true}
	}

	tagsStr := c.PostForm("tags") // Expecting a JSON array string e.g., ["night", "blurry"]
	if tagsStr != "" {
		if json.Valid([]byte(tagsStr)) {
			tc.Tags = json.RawMessage(tagsStr)
		} else {
			go func() {
				if err := minioClient.DeleteFile(context.Background(), objectName); err != nil {
					log.Printf("Failed to delete orphaned MinIO object '%s' after tags validation error: %v", objectName, err)
				}
			}()
			c.JSON(http.StatusBadRequest, gin.H{"error": "tags field contains invalid JSON"})
			return
		}
	} else {
		tc.Tags = json.RawMessage("null") // Default to SQL NULL if not provided
	}

	// Create test case metadata in DB
	id, err := datastore.CreatePlateTestCase(&tc)
	if err != nil {
		// Attempt to delete the uploaded file from MinIO if the DB operation fails
		go func() {
			if errDel := minioClient.DeleteFile(context.Background(), objectName); errDel != nil {
				log.Printf("CRITICAL: Failed to delete MinIO object '%s' after DB error: %v. DB error was: %v", objectName, errDel, err)
			} else {
				log.Printf("Successfully deleted MinIO object '%s' after DB error.", objectName)
			}
		}()
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create plate test case metadata: %v", err)})
		return
	}

	tc.ID = id
	// Refetch to get DB-generated timestamps
	createdTC, err := datastore.GetPlateTestCase(id)
	if err != nil {
		log.Printf("Failed to refetch plate test case %d after creation: %v", id, err)
		c.JSON(http.StatusCreated, tc)
		return
	}

	c.JSON(http.StatusCreated, createdTC)
}

// GetPlateTestCaseHandler retrieves a specific plate test case by its ID.
func GetPlateTestCaseHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plate test case ID format"})
		return
	}

	tc, err := datastore.GetPlateTestCase(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to retrieve plate test case: %v", err)})
		}
		return
	}

	c.JSON(http.StatusOK, tc)
}

// ListPlateTestCasesHandler lists plate test cases, with optional filters.
func ListPlateTestCasesHandler(c *gin.Context) {
	regionCode := c.Query("region_code")
	tagsQuery := c.Query("tags") // e.g., /plate-test-cases?tags=night,blurry

	tcs, err := datastore.ListPlateTestCases(regionCode, tagsQuery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to list plate test cases: %v", err)})
		return
	}

	if tcs == nil {
		tcs = []*datastore.PlateTestCase{} // Return empty array instead of null
	}

	c.JSON(http.StatusOK, tcs)
}

// UpdatePlateTestCaseHandler updates metadata for an existing plate test case.
// Does not handle image file replacement in this version.
func UpdatePlateTestCaseHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plate test case ID format"})
		return
	}

	// Check if the test case exists before attempting update
	_, err = datastore.GetPlateTestCase(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Plate test case with ID %d not found", id)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to verify plate test case: %v", err)})
		}
		return
	}

	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request payload: %v", err)})
		return
	}

	// Prevent image_file_path from being updated via this handler
	if _, ok := updateData["image_file_path"]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_file_path cannot be updated via this endpoint"})
		return
	}
	// also id, created_at, updated_at should not be updatable from payload
	delete(updateData, "id")
	delete(updateData, "created_at")
	delete(updateData, "updated_at")

	updatedTC, err := datastore.UpdatePlateTestCase(id, updateData)
	if err != nil {
		if strings.Contains(err.Error(), "no updatable metadata fields") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if strings.Contains(err.Error(), "not found") { // Should be caught by pre-check, but good failsafe
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to update plate test case: %v", err)})
		}
		return
	}

	c.JSON(http.StatusOK, updatedTC)
}

// DeletePlateTestCaseHandler deletes a plate test case and its stored image.
func DeletePlateTestCaseHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plate test case ID format"})
		return
	}

	// Retrieve the test case to get image_file_path for deletion from MinIO
	tc, err := datastore.GetPlateTestCase(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Plate test case with ID %d not found", id)})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to retrieve plate test case before deletion: %v", err)})
		}
		return
	}

	// Delete metadata from DB
	err = datastore.DeletePlateTestCase(id)
	if err != nil {
		// DB deletion failed, so we don't proceed to MinIO deletion.
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to delete plate test case metadata: %v", err)})
		return
	}

	// If DB deletion was successful, proceed to delete from MinIO
	if tc.ImageFilePath != "" {
		minioClient, clientErr := objectstore.GetGlobalMinioClient()
		if clientErr != nil {
			log.Printf("Error getting Minio client for file deletion: %v. DB record for ID %d deleted, but MinIO file %s may be orphaned.", clientErr, id, tc.ImageFilePath)
			c.JSON(http.StatusOK, gin.H{"message": "Plate test case metadata deleted successfully, but failed to connect to object storage to remove image file."})
			return
		}

		err = minioClient.DeleteFile(context.Background(), tc.ImageFilePath)
		if err != nil {
			log.Printf("Failed to delete image file '%s' from MinIO for plate test case ID %d: %v. DB record was deleted.", tc.ImageFilePath, id, err)
			c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Plate test case metadata deleted successfully, but failed to remove image file '%s' from object storage: %v", tc.ImageFilePath, err)})
			return
		}
		log.Printf("Successfully deleted image file '%s' from MinIO for plate test case ID %d.", tc.ImageFilePath, id)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plate test case and associated image file deleted successfully"})
}
