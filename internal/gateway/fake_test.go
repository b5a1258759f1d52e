package gateway_test

import (
	"context"
	"sync"
	"time"

	"google.golang.org/genai"
	"interior-design-backend/internal/gateway"
	"interior-design-backend/internal/logging"
	"interior-design-backend/internal/models"
)

const validDetailsJSON = `{
  "description": "Clean lines and a calm neutral base.",
  "color_palette": ["#FFFFFF", "#1F1F1F", "#C8B8A6", "#6B7B8C", "#D9D4CC"],
  "furniture_recommendations": [
    {"name": "Low sofa", "description": "Track arms", "price": "$899", "link": "https://shop.example/sofa", "imageUrl": "https://img.example/sofa.jpg"}
  ]
}`

var testModels = gateway.ModelSet{
	Fast:      "fast-model",
	Pro:       "pro-model",
	Image:     "image-model",
	ImageEdit: "edit-model",
	Chat:      "chat-model",
}

type contentFunc func(model string, call int, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type imagesFunc func(call int) (*genai.GenerateImagesResponse, error)

// fakeProvider counts calls per model and delegates responses to the test.
type fakeProvider struct {
	mu         sync.Mutex
	calls      map[string]int
	lastConfig map[string]*genai.GenerateContentConfig
	prompts    []string
	content    contentFunc
	images     imagesFunc
}

func newFakeProvider(content contentFunc, images imagesFunc) *fakeProvider {
	return &fakeProvider{
		calls:      make(map[string]int),
		lastConfig: make(map[string]*genai.GenerateContentConfig),
		content:    content,
		images:     images,
	}
}

func (f *fakeProvider) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	f.calls[model]++
	call := f.calls[model]
	f.lastConfig[model] = cfg
	f.mu.Unlock()
	return f.content(model, call, contents, cfg)
}

func (f *fakeProvider) GenerateImages(ctx context.Context, model string, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.mu.Lock()
	f.calls[model]++
	call := f.calls[model]
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.images(call)
}

// imagePrompts returns every prompt sent to GenerateImages, in order.
func (f *fakeProvider) imagePrompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *fakeProvider) callCount(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[model]
}

func (f *fakeProvider) config(model string) *genai.GenerateContentConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastConfig[model]
}

// recordingPolicy is a fast policy that records every retry delay.
type recordingPolicy struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingPolicy) policy() gateway.Policy {
	return gateway.Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Millisecond,
		Multiplier:  2,
		MaxJitter:   time.Millisecond,
		OnRetry: func(attempt int, delay time.Duration, cause *gateway.Error) {
			r.mu.Lock()
			r.delays = append(r.delays, delay)
			r.mu.Unlock()
		},
	}
}

func (r *recordingPolicy) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func newTestGateway(p gateway.Provider, rec *recordingPolicy) *gateway.Gateway {
	if rec == nil {
		rec = &recordingPolicy{}
	}
	return gateway.New(p, gateway.Options{
		Models:         testModels,
		Policy:         rec.policy(),
		Timeout:        time.Second,
		ThinkingBudget: 1024,
		Logger:         logging.Discard(),
	})
}

const kitchen = "A narrow galley kitchen with white tiles, a single window over the sink and laminate counters."

func roomImage() models.ImagePayload {
	return models.ImagePayload{MimeType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0x01}}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func inlineImageResponse(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "Here is the edited room."},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func noImageResponse() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: "I can't draw that."}}},
			FinishReason: genai.FinishReason("NO_IMAGE"),
		}},
	}
}

func generatedImages(data []byte) *genai.GenerateImagesResponse {
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{
			Image: &genai.Image{ImageBytes: data, MIMEType: "image/jpeg"},
		}},
	}
}

func quotaError() error {
	return genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "Resource has been exhausted (e.g. check quota)."}
}

func unavailableError() error {
	return genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "The model is overloaded."}
}
