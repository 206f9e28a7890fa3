package vendoradapters

import (
	"context"
	"fmt"
	"log"
	"time"

	"license-plate-eval-platform/internal/datastore"
)

// MockVLMAdapter is a mock implementation of the VLMAdapter interface.
type MockVLMAdapter struct{}

// Predict simulates a plate reading. A vendor config named "MockVLM-Error"
// simulates a failing vendor.
func (m *MockVLMAdapter) Predict(ctx context.Context, imageKey string, params map[string]interface{}, vendorConfig *datastore.VendorConfig) (string, string, error) {
	log.Printf("MockVLMAdapter: Predict called for image '%s', vendor '%s'", imageKey, vendorConfig.Name)

	// Simulate network latency
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", "", ctx.Err()
	}

	if vendorConfig.Name == "MockVLM-Error" {
		mockRawResponse := `{"error": "Simulated error from MockVLM-Error vendor"}`
		return "", mockRawResponse, fmt.Errorf("simulated error from MockVLM-Error for image %s", imageKey)
	}

	mockText := "B 1234 ABC"
	mockRawResponse := fmt.Sprintf(`{"content": "%s", "simulated": true}`, mockText)
	return mockText, mockRawResponse, nil
}
