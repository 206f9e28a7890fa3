package vendoradapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"license-plate-eval-platform/internal/datastore"
	"license-plate-eval-platform/internal/objectstore"
)

const (
	defaultOpenAIBaseURL = "http://localhost:1234/v1" // LM Studio default
	defaultVLMModel      = "llava-v1.6-mistral-7b"
	plateMaxTokens       = 100
	plateTemperature     = 0.1
)

// OpenAIVLMAdapter implements the VLMAdapter interface for any
// OpenAI-compatible chat completions endpoint with vision support
// (LM Studio, vLLM, OpenAI itself).
type OpenAIVLMAdapter struct {
	MinioClient *objectstore.MinioClient
}

// NewOpenAIVLMAdapter creates a new instance of OpenAIVLMAdapter.
func NewOpenAIVLMAdapter(minioClient *objectstore.MinioClient) *OpenAIVLMAdapter {
	if minioClient == nil {
		log.Println("Warning: NewOpenAIVLMAdapter created with a nil MinioClient. Image fetching will fail.")
	}
	return &OpenAIVLMAdapter{MinioClient: minioClient}
}

// Predict reads the plate from the stored image via a chat completion request
// carrying the image as a base64 data URL.
func (a *OpenAIVLMAdapter) Predict(ctx context.Context, imageKey string, params map[string]interface{}, vendorConfig *datastore.VendorConfig) (string, string, error) {
	if a.MinioClient == nil {
		return "", "", fmt.Errorf("OpenAIVLMAdapter: MinioClient is not initialized")
	}

	baseURL := defaultOpenAIBaseURL
	if vendorConfig.APIEndpoint.Valid && vendorConfig.APIEndpoint.String != "" {
		baseURL = vendorConfig.APIEndpoint.String
	}
	// LM Studio ignores the key but the client requires one.
	apiKey := "lm-studio"
	if vendorConfig.APIKey.Valid && vendorConfig.APIKey.String != "" {
		apiKey = vendorConfig.APIKey.String
	}

	model := defaultVLMModel
	if m, ok := params["model"].(string); ok && m != "" {
		model = m
	} else if m := modelFromVendorConfig(vendorConfig); m != "" {
		model = m
	}

	log.Printf("OpenAIVLMAdapter: Predict called for image '%s', vendor '%s', model '%s'", imageKey, vendorConfig.Name, model)

	imageBytes, err := a.MinioClient.GetFileBytes(ctx, imageKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch image '%s' from MinIO: %w", imageKey, err)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	client := openai.NewClientWithConfig(clientConfig)

	return PredictPlateFromDataURL(ctx, client, model, EncodeImageDataURL(imageKey, imageBytes))
}

// EncodeImageDataURL encodes image bytes into a data URL with a content type
// inferred from the filename extension.
func EncodeImageDataURL(filename string, data []byte) string {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// PredictPlateFromDataURL runs the plate-reading chat completion against an
// already-built client. It is shared by the adapter (images from object
// storage) and the CLI batch runner (images from the local filesystem).
func PredictPlateFromDataURL(ctx context.Context, client *openai.Client, model string, dataURL string) (string, string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   plateMaxTokens,
		Temperature: plateTemperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: DefaultPlatePrompt,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("chat completion request failed: %w", err)
	}

	rawResponse := ""
	if respJSON, marshalErr := json.Marshal(resp); marshalErr == nil {
		rawResponse = string(respJSON)
	}

	if len(resp.Choices) == 0 {
		return "", rawResponse, fmt.Errorf("chat completion response contained no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), rawResponse, nil
}

func modelFromVendorConfig(vendorConfig *datastore.VendorConfig) string {
	if vendorConfig.SupportedModels == nil {
		return ""
	}
	// SupportedModels is a JSON array like [{"model_id": "...", "name": "..."}];
	// the first entry is the default.
	var models []struct {
		ModelID string `json:"model_id"`
	}
	if err := json.Unmarshal(vendorConfig.SupportedModels, &models); err != nil || len(models) == 0 {
		return ""
	}
	return models[0].ModelID
}
