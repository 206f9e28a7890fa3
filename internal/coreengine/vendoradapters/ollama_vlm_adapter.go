package vendoradapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/objectstore"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaVLMAdapter implements the VLMAdapter interface for a local Ollama
// server via its native /api/generate endpoint.
type OllamaVLMAdapter struct {
	MinioClient *objectstore.MinioClient
	HTTPClient  *http.Client
}

// NewOllamaVLMAdapter creates a new instance of OllamaVLMAdapter.
func NewOllamaVLMAdapter(minioClient *objectstore.MinioClient) *OllamaVLMAdapter {
	if minioClient == nil {
		log.Println("Warning: NewOllamaVLMAdapter created with a nil MinioClient. Image fetching will fail.")
	}
	return &OllamaVLMAdapter{
		MinioClient: minioClient,
		HTTPClient:  &http.Client{Timeout: time.Second * 120}, // Local model inference can be slow.
	}
}

type ollamaGenerateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
	Options struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaGenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"created_at"`
}

// Predict reads the plate from the stored image via Ollama's generate API.
func (a *OllamaVLMAdapter) Predict(ctx context.Context, imageKey string, params map[string]interface{}, vendorConfig *datastore.VendorConfig) (string, string, error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("OllamaVLMAdapter: MinioClient is not initialized")
	}
	if a.HTTPClient == nil {
		return "", "", fmt.Errorf("OllamaVLMAdapter: HTTPClient is not initialized")
	}

	baseURL := defaultOllamaBaseURL
	if vendorConfig.APIEndpoint.Valid && vendorConfig.APIEndpoint.String != "" {
		baseURL = strings.TrimRight(vendorConfig.APIEndpoint.String, "/")
	}
	model := defaultVLMModel
	if m, ok := params["model"].(string); ok && m != "" {
		model = m
	} else if m := modelFromVendorConfig(vendorConfig); m != "" {
		model = m
	}

	log.Printf("OllamaVLMAdapter: Predict called for image '%s', vendor '%s', model '%s'", imageKey, vendorConfig.Name, model)

	imageBytes, err := a.MinioClient.GetFileBytes(ctx, imageKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch image '%s' from MinIO: %w", imageKey, err)
	}

	genReq := ollamaGenerateRequest{
		Model:  model,
		Prompt: DefaultPlatePrompt,
		Images: []string{base64.StdEncoding.EncodeToString(imageBytes)},
		Stream: false,
	}
	genReq.Options.Temperature = plateTemperature
	genReq.Options.NumPredict = plateMaxTokens

	payload, err := json.Marshal(genReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal Ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("failed to create Ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := a.HTTPClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to send request to Ollama: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read Ollama response body: %w", err)
	}
	rawResponse := string(respBody)

	if httpResp.StatusCode != http.StatusOK {
		log.Printf("Ollama API Error: Status %s, Body: %s", httpResp.Status, rawResponse)
		return "", rawResponse, fmt.Errorf("Ollama request failed with status %s", httpResp.Status)
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", rawResponse, fmt.Errorf("failed to parse Ollama JSON response: %w", err)
	}

	return strings.TrimSpace(genResp.Response), rawResponse, nil
}
