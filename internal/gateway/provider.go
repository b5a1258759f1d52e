package gateway

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Provider is the slice of the genai client the gateway needs.
// *genai.Models satisfies it; tests substitute a fake.
type Provider interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// ModelSet names the model used for each class of call.
type ModelSet struct {
	Fast      string
	Pro       string
	Image     string
	ImageEdit string
	Chat      string
}

// NewGenAIProvider creates a Gemini API client and returns its Models service.
func NewGenAIProvider(ctx context.Context, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return client.Models, nil
}
