package vendoradapters

import (
	"fmt"
	"log"
	"strings"

	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/objectstore"
)

// globalObjectStoreClient is shared by adapters that fetch images from object
// storage. Set once at application startup via InitAdapterRegistry.
var globalObjectStoreClient *objectstore.MinioClient

// InitAdapterRegistry initializes shared resources for adapters, like the
// object store client.
func InitAdapterRegistry(minioClient *objectstore.MinioClient) {
	if minioClient == nil {
		log.Println("Warning: InitAdapterRegistry called with a nil MinioClient. Adapters needing object storage may fail.")
	}
	globalObjectStoreClient = minioClient
}

// GetVLMAdapter selects and returns a VLMAdapter based on the vendor
// configuration. Selection is by vendor name first, then by API type.
func GetVLMAdapter(vendorConfig *datastore.VendorConfig) (VLMAdapter, error) {
	if vendorConfig == nil {
		return nil, fmt.Errorf("vendorConfig cannot be nil")
	}

	log.Printf("Attempting to get VLM adapter for vendor: %s (Type: %s)", vendorConfig.Name, vendorConfig.APIType)

	switch {
	case vendorConfig.Name == "MockVLM" || vendorConfig.Name == "MockVLM-Error":
		log.Println("Selected MockVLMAdapter.")
		return &MockVLMAdapter{}, nil
	case strings.EqualFold(vendorConfig.Name, "Ollama") || strings.EqualFold(vendorConfig.APIType, "OLLAMA"):
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("OllamaVLMAdapter requires an initialized object store client, but it's nil")
		}
		log.Println("Selected OllamaVLMAdapter.")
		return NewOllamaVLMAdapter(globalObjectStoreClient), nil
	case vendorConfig.APIEndpoint.Valid || strings.EqualFold(vendorConfig.APIType, "VLM"):
		// Any OpenAI-compatible endpoint: LM Studio, vLLM, OpenAI.
		if globalObjectStoreClient == nil {
			return nil, fmt.Errorf("OpenAIVLMAdapter requires an initialized object store client, but it's nil")
		}
		log.Println("Selected OpenAIVLMAdapter.")
		return NewOpenAIVLMAdapter(globalObjectStoreClient), nil
	default:
		log.Printf("No specific adapter found for vendor '%s' (API Type: %s). Defaulting to MockVLMAdapter.", vendorConfig.Name, vendorConfig.APIType)
		return &MockVLMAdapter{}, nil
	}
}
