package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"
	"interior-design-backend/internal/models"
)

var (
	validate = validator.New(validator.WithRequiredStructEnabled())

	requiredDetailFields = []string{"description", "color_palette", "furniture_recommendations"}
	arrayDetailFields    = []string{"color_palette", "furniture_recommendations"}
)

// GenerateStyleDetails asks for structured JSON describing the design in image.
// No retry: a bad body is reported as MalformedResponse or EmptyResponse.
func (g *Gateway) GenerateStyleDetails(ctx context.Context, image models.ImagePayload, styleName string) (models.StyleDetails, error) {
	if !image.Present() {
		return models.StyleDetails{}, withOp(opGenerateStyleDetails, ErrImageRequired)
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   styleDetailsSchema(),
	}
	resp, err := g.generateContent(ctx, g.models.Pro, imageAndText(image, styleDetailsPrompt(styleName)), cfg)
	if err != nil {
		return models.StyleDetails{}, withOp(opGenerateStyleDetails, err)
	}

	details, err := parseStyleDetails(responseText(resp))
	if err != nil {
		return models.StyleDetails{}, withOp(opGenerateStyleDetails, err)
	}
	return details, nil
}

// parseStyleDetails validates and decodes a style details body. It never returns a
// partially filled result.
func parseStyleDetails(body string) (models.StyleDetails, error) {
	body = stripCodeFence(body)
	if body == "" {
		return models.StyleDetails{}, &Error{Kind: KindEmptyResponse, Reason: "provider returned no JSON body"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return models.StyleDetails{}, &Error{Kind: KindMalformedResponse, Reason: "invalid JSON", Err: err}
	}
	for _, field := range requiredDetailFields {
		if _, ok := raw[field]; !ok {
			return models.StyleDetails{}, &Error{Kind: KindMalformedResponse, Reason: fmt.Sprintf("missing field %q", field)}
		}
	}
	for _, field := range arrayDetailFields {
		if !bytes.HasPrefix(bytes.TrimSpace(raw[field]), []byte("[")) {
			return models.StyleDetails{}, &Error{Kind: KindMalformedResponse, Reason: fmt.Sprintf("field %q is not an array", field)}
		}
	}

	var details models.StyleDetails
	if err := json.Unmarshal([]byte(body), &details); err != nil {
		return models.StyleDetails{}, &Error{Kind: KindMalformedResponse, Reason: "unexpected field types", Err: err}
	}
	for i, item := range details.FurnitureRecommendations {
		if err := validate.Struct(item); err != nil {
			return models.StyleDetails{}, &Error{Kind: KindMalformedResponse, Reason: fmt.Sprintf("furniture recommendation %d is incomplete", i), Err: err}
		}
	}

	return details, nil
}

// stripCodeFence removes a surrounding ```json fence some models add despite the MIME type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
