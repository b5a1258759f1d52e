package gateway

import (
	"context"

	"google.golang.org/genai"
	"interior-design-backend/internal/models"
)

// GenerateStory writes a narrative paragraph about the design in image.
func (g *Gateway) GenerateStory(ctx context.Context, image models.ImagePayload, styleName, roomContext string) (string, error) {
	text, err := g.describe(ctx, g.models.Fast, image, storyPrompt(styleName, roomContext), nil)
	return text, withOp(opGenerateStory, err)
}

// ContinueStory writes the next paragraph. The history is flattened into the prompt
// rather than replayed as provider chat turns.
func (g *Gateway) ContinueStory(ctx context.Context, history []models.ChatMessage, image models.ImagePayload, styleName, roomContext string) (string, error) {
	text, err := g.describe(ctx, g.models.Fast, image, continueStoryPrompt(history, styleName, roomContext), nil)
	return text, withOp(opContinueStory, err)
}

// Chat answers the latest user turn with Google Search grounding. The reply is a
// text part plus, when the provider cited pages, a sources part.
func (g *Gateway) Chat(ctx context.Context, history []models.ChatMessage) ([]models.ChatPart, error) {
	if len(history) == 0 {
		return nil, withOp(opChat, &Error{Kind: KindProviderError, Reason: "chat history is empty"})
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if m.Role == models.RoleModel {
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemPrompt, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := g.generateContent(ctx, g.models.Chat, contents, cfg)
	if err != nil {
		return nil, withOp(opChat, err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, withOp(opChat, &Error{Kind: KindProviderError, Reason: "no text returned by model"})
	}

	parts := []models.ChatPart{{Text: text}}
	if sources := groundingSources(resp); len(sources) > 0 {
		parts = append(parts, models.ChatPart{Sources: sources})
	}
	return parts, nil
}

func groundingSources(resp *genai.GenerateContentResponse) []models.Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	seen := make(map[string]bool)
	var sources []models.Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		sources = append(sources, models.Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}
