package configmanagement

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"license-plate-eval-platform/internal/datastore"
)

// CreateVendorConfigHandler handles the creation of a new vendor configuration.
func CreateVendorConfigHandler(c *gin.Context) {
	var vc datastore.VendorConfig
	if err := c.ShouldBindJSON(&vc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	// Basic validation
	if vc.Name == "" || vc.APIType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and API Type are required fields"})
		return
	}

	// Ensure JSON fields are valid if provided, or default to null
	if len(vc.SupportedModels) > 0 {
		if !json.Valid(vc.SupportedModels) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supported_models is not valid JSON"})
			return
		}
	} else {
		vc.SupportedModels = json.RawMessage("null")
	}

	if len(vc.OtherConfigs) > 0 {
		if !json.Valid(vc.OtherConfigs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "other_configs is not valid JSON"})
			return
		}
	} else {
		vc.OtherConfigs = json.RawMessage("null")
	}

	id, err := datastore.CreateVendorConfig(&vc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor config: " + err.Error()})
		return
	}

	vc.ID = id // Set the ID in the response object
	c.JSON(http.StatusCreated, vc)
}

// GetVendorConfigHandler retrieves a specific vendor configuration by its ID.
func GetVendorConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor config ID format"})
		return
	}

	vc, err := datastore.GetVendorConfig(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vendor config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, vc)
}

// UpdateVendorConfigHandler updates an existing vendor configuration.
func UpdateVendorConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor config ID format"})
		return
	}

	var vc datastore.VendorConfig
	if err := c.ShouldBindJSON(&vc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}
	vc.ID = id // Ensure the ID from the path is used

	// Basic validation
	if vc.Name == "" || vc.APIType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and API Type are required fields"})
		return
	}

	// Optional JSON fields are replaced wholesale. A client that wants to keep
	// the stored value must resend it.
	if len(vc.SupportedModels) > 0 {
		if !json.Valid(vc.SupportedModels) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "supported_models is not valid JSON"})
			return
		}
	} else {
		vc.SupportedModels = json.RawMessage("null")
	}

	if len(vc.OtherConfigs) > 0 {
		if !json.Valid(vc.OtherConfigs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "other_configs is not valid JSON"})
			return
		}
	} else {
		vc.OtherConfigs = json.RawMessage("null")
	}

	err = datastore.UpdateVendorConfig(&vc)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vendor config: " + err.Error()})
		}
		return
	}

	// Fetch the updated record to return it, as UpdateVendorConfig doesn't return the object
	updatedVc, err := datastore.GetVendorConfig(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated vendor config: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, updatedVc)
}

// DeleteVendorConfigHandler deletes a vendor configuration by its ID.
func DeleteVendorConfigHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor config ID format"})
		return
	}

	err = datastore.DeleteVendorConfig(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vendor config: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vendor config deleted successfully"})
}

// ListVendorConfigsHandler lists vendor configurations, optionally filtered by api_type.
func ListVendorConfigsHandler(c *gin.Context) {
	apiType := c.Query("api_type") // e.g., /vendors?api_type=VLM

	vcs, err := datastore.ListVendorConfigs(apiType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vendor configs: " + err.Error()})
		return
	}

	if vcs == nil {
		vcs = []*datastore.VendorConfig{} // Return empty array instead of null
	}

	c.JSON(http.StatusOK, vcs)
}

// InitHandlers wires the shared database connection into the datastore
// package. Kept as an explicit initialization step even though datastore uses
// a package-level variable.
func InitHandlers(db *sql.DB) {
	datastore.DB = db
}
