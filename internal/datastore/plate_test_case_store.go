package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreatePlateTestCase inserts new plate test case metadata into the database.
func CreatePlateTestCase(tc *PlateTestCase) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO plate_test_cases (name, region_code, image_file_path, ground_truth_plate, tags, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	tc.CreatedAt = time.Now()
	tc.UpdatedAt = time.Now()

	var id int
	err := DB.QueryRow(
		query,
		tc.Name,
		tc.RegionCode,
		tc.ImageFilePath,
		tc.GroundTruthPlate,
		jsonOrNull(tc.Tags),
		tc.Description,
		tc.CreatedAt,
		tc.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create plate test case: %w", err)
	}
	return id, nil
}

// GetPlateTestCase retrieves a plate test case by ID.
func GetPlateTestCase(id int) (*PlateTestCase, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, name, region_code, image_file_path, ground_truth_plate, tags, description, created_at, updated_at
		FROM plate_test_cases
		WHERE id = $1
	`
	tc := &PlateTestCase{}
	var tagsJSON []byte

	err := DB.QueryRow(query, id).Scan(
		&tc.ID,
		&tc.Name,
		&tc.RegionCode,
		&tc.ImageFilePath,
		&tc.GroundTruthPlate,
		&tagsJSON,
		&tc.Description,
		&tc.CreatedAt,
		&tc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plate test case with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get plate test case: %w", err)
	}
	if tagsJSON != nil && string(tagsJSON) != "null" {
		tc.Tags = json.RawMessage(tagsJSON)
	}

	return tc, nil
}

// ListPlateTestCases lists plate test cases, optionally filtered by
// region_code and tags.
// regionCode: exact match. tagsQuery: comma-separated tags; uses the JSONB
// containment `?&` operator.
func ListPlateTestCases(regionCode string, tagsQuery string) ([]*PlateTestCase, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	var conditions []string
	var args []interface{}
	argID := 1

	if regionCode != "" {
		conditions = append(conditions, fmt.Sprintf("region_code = $%d", argID))
		args = append(args, regionCode)
		argID++
	}

	if tagsQuery != "" {
		var validTags []string
		for _, t := range strings.Split(tagsQuery, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				validTags = append(validTags, trimmed)
			}
		}
		if len(validTags) > 0 {
			conditions = append(conditions, fmt.Sprintf("tags ?& $%d::text[]", argID))
			args = append(args, validTags)
			argID++
		}
	}

	query := "SELECT id, name, region_code, image_file_path, ground_truth_plate, tags, description, created_at, updated_at FROM plate_test_cases"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plate test cases: %w", err)
	}
	defer rows.Close()

	testCases := []*PlateTestCase{}
	for rows.Next() {
		tc := &PlateTestCase{}
		var tagsJSON []byte
		if err := rows.Scan(
			&tc.ID,
			&tc.Name,
			&tc.RegionCode,
			&tc.ImageFilePath,
			&tc.GroundTruthPlate,
			&tagsJSON,
			&tc.Description,
			&tc.CreatedAt,
			&tc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plate test case row: %w", err)
		}
		if tagsJSON != nil && string(tagsJSON) != "null" {
			tc.Tags = json.RawMessage(tagsJSON)
		}
		testCases = append(testCases, tc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for plate test cases: %w", err)
	}

	return testCases, nil
}

// UpdatePlateTestCase updates metadata fields of an existing plate test case.
// The image file path is not updatable here; replacing the image is a separate
// upload flow.
func UpdatePlateTestCase(id int, tcUpdateData map[string]interface{}) (*PlateTestCase, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	allowedFields := map[string]string{
		"name":               "string",
		"region_code":        "sql.NullString",
		"ground_truth_plate": "sql.NullString",
		"tags":               "json.RawMessage",
		"description":        "sql.NullString",
	}

	var setClauses []string
	var args []interface{}
	argID := 1

	for key, value := range tcUpdateData {
		fieldType, ok := allowedFields[key]
		if !ok {
			continue
		}

		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argID))

		switch fieldType {
		case "sql.NullString":
			if strVal, ok := value.(string); ok && strVal != "" {
				args = append(args, sql.NullString{String: strVal, Valid: true})
			} else {
				args = append(args, sql.NullString{Valid: false})
			}
		case "json.RawMessage":
			if rawMsg, ok := value.(json.RawMessage); ok && len(rawMsg) > 0 && json.Valid(rawMsg) {
				args = append(args, rawMsg)
			} else if strVal, ok := value.(string); ok && strVal != "" && json.Valid([]byte(strVal)) {
				args = append(args, json.RawMessage(strVal))
			} else {
				args = append(args, json.RawMessage("null"))
			}
		default:
			args = append(args, value)
		}
		argID++
	}

	if len(setClauses) == 0 {
		currentTC, err := GetPlateTestCase(id)
		if err != nil {
			return nil, fmt.Errorf("no valid fields provided for update and failed to fetch current test case: %w", err)
		}
		return currentTC, errors.New("no updatable metadata fields provided")
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	query := fmt.Sprintf("UPDATE plate_test_cases SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)
	args = append(args, id)

	result, err := DB.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update plate test case with ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected for plate test case ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("plate test case with ID %d not found for update", id)
	}

	return GetPlateTestCase(id)
}

// DeletePlateTestCase deletes a plate test case by ID from the database.
func DeletePlateTestCase(id int) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}
	result, err := DB.Exec("DELETE FROM plate_test_cases WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete plate test case with ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for plate test case ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("plate test case with ID %d not found for deletion", id)
	}

	return nil
}
