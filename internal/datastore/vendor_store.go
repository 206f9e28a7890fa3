package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// pq is the PostgreSQL driver
	_ "github.com/lib/pq"
)

// DB is the package-wide database connection pool. Initialized once at
// application startup via InitDB.
var DB *sql.DB

// InitDB initializes the database connection from a data source name.
func InitDB(dataSourceName string) error {
	var err error
	DB, err = sql.Open("postgres", dataSourceName)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// CreateVendorConfig inserts a new vendor config and returns its ID.
func CreateVendorConfig(vc *VendorConfig) (int, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO vendor_configs (name, api_type, api_key, api_secret, api_endpoint, supported_models, other_configs, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	vc.CreatedAt = time.Now()
	vc.UpdatedAt = time.Now()

	var id int
	err := DB.QueryRow(
		query,
		vc.Name,
		vc.APIType,
		vc.APIKey,
		vc.APISecret,
		vc.APIEndpoint,
		jsonOrNull(vc.SupportedModels),
		jsonOrNull(vc.OtherConfigs),
		vc.CreatedAt,
		vc.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create vendor config: %w", err)
	}
	return id, nil
}

// GetVendorConfig retrieves a vendor config by ID.
func GetVendorConfig(id int) (*VendorConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, name, api_type, api_key, api_secret, api_endpoint, supported_models, other_configs, created_at, updated_at
		FROM vendor_configs
		WHERE id = $1
	`
	vc := &VendorConfig{}
	var supportedModels, otherConfigs []byte

	err := DB.QueryRow(query, id).Scan(
		&vc.ID,
		&vc.Name,
		&vc.APIType,
		&vc.APIKey,
		&vc.APISecret,
		&vc.APIEndpoint,
		&supportedModels,
		&otherConfigs,
		&vc.CreatedAt,
		&vc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("vendor config with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get vendor config: %w", err)
	}
	vc.SupportedModels = json.RawMessage(supportedModels)
	vc.OtherConfigs = json.RawMessage(otherConfigs)

	return vc, nil
}

// UpdateVendorConfig updates an existing vendor config.
func UpdateVendorConfig(vc *VendorConfig) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `
		UPDATE vendor_configs
		SET name = $1, api_type = $2, api_key = $3, api_secret = $4, api_endpoint = $5, supported_models = $6, other_configs = $7, updated_at = $8
		WHERE id = $9
	`
	vc.UpdatedAt = time.Now()

	result, err := DB.Exec(
		query,
		vc.Name,
		vc.APIType,
		vc.APIKey,
		vc.APISecret,
		vc.APIEndpoint,
		jsonOrNull(vc.SupportedModels),
		jsonOrNull(vc.OtherConfigs),
		vc.UpdatedAt,
		vc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("vendor config with ID %d not found for update", vc.ID)
	}

	return nil
}

// DeleteVendorConfig deletes a vendor config by ID.
func DeleteVendorConfig(id int) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}
	result, err := DB.Exec("DELETE FROM vendor_configs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete vendor config: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("vendor config with ID %d not found for deletion", id)
	}

	return nil
}

// ListVendorConfigs lists vendor configs, optionally filtered by api_type.
// If apiType is an empty string, all configs are listed.
func ListVendorConfigs(apiType string) ([]*VendorConfig, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	var rows *sql.Rows
	var err error
	baseQuery := "SELECT id, name, api_type, api_key, api_secret, api_endpoint, supported_models, other_configs, created_at, updated_at FROM vendor_configs"

	if apiType == "" {
		rows, err = DB.Query(baseQuery + " ORDER BY created_at DESC")
	} else {
		rows, err = DB.Query(baseQuery+" WHERE api_type = $1 ORDER BY created_at DESC", apiType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor configs: %w", err)
	}
	defer rows.Close()

	configs := []*VendorConfig{}
	for rows.Next() {
		vc := &VendorConfig{}
		var supportedModels, otherConfigs []byte

		if err := rows.Scan(
			&vc.ID,
			&vc.Name,
			&vc.APIType,
			&vc.APIKey,
			&vc.APISecret,
			&vc.APIEndpoint,
			&supportedModels,
			&otherConfigs,
			&vc.CreatedAt,
			&vc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor config row: %w", err)
		}
		vc.SupportedModels = json.RawMessage(supportedModels)
		vc.OtherConfigs = json.RawMessage(otherConfigs)
		configs = append(configs, vc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for vendor configs: %w", err)
	}

	return configs, nil
}

// jsonOrNull maps a nil/empty RawMessage to SQL NULL.
func jsonOrNull(raw json.RawMessage) []byte {
	if len(raw) > 0 {
		return raw
	}
	return json.RawMessage("null")
}
