package vendoradapters

import (
	"context"

	"license-plate-eval-platform/internal/datastore"
)

// DefaultPlatePrompt is the instruction sent to vision-language models. The
// wording deliberately forbids explanations so the response normalizes cleanly.
const DefaultPlatePrompt = "What is the license plate number shown in this image? Respond only with the plate number without any additional text or explanation."

// VLMAdapter defines the interface for vision-language model vendor services
// that read license plates from images.
type VLMAdapter interface {
	// Predict reads the plate from the image stored under imageKey (an object
	// key in object storage) using vendor-specific parameters.
	// vendorConfig provides API keys, endpoints, and model selection.
	// It returns the raw text response of the model and the full vendor
	// response body for auditing.
	Predict(ctx context.Context, imageKey string, params map[string]interface{}, vendorConfig *datastore.VendorConfig) (rawText string, rawResponse string, err error)
}
