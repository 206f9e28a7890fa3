package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PlateTestCase maps to the plate_test_cases table in the database.
// A test case is one plate image plus its (possibly unknown) ground truth.
type PlateTestCase struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	RegionCode       sql.NullString  `json:"region_code,omitempty"` // e.g., "ID" for Indonesian plates
	ImageFilePath    string          `json:"image_file_path"`       // Path/key in object storage
	GroundTruthPlate sql.NullString  `json:"ground_truth_plate,omitempty"`
	Tags             json.RawMessage `json:"tags,omitempty"` // e.g., ["night", "motion_blur"]
	Description      sql.NullString  `json:"description,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
