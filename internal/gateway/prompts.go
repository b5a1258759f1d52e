package gateway

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
	"interior-design-backend/internal/models"
)

const (
	analyzeRoomPrompt = "Describe this room in one or two sentences: its type, layout, main furniture, " +
		"flooring, lighting and current style. Plain text only."

	analyzeRoomDetailedPrompt = "You are an experienced interior designer. Study this room photo and write a " +
		"thorough description that another designer could work from without seeing the photo: room type and " +
		"approximate dimensions, architectural features (windows, doors, ceiling, built-ins), flooring and wall " +
		"finishes, every notable piece of furniture and its placement, lighting sources, color scheme, and the " +
		"overall mood. Plain prose, no lists, no markdown."

	chatSystemPrompt = "You are a friendly interior design assistant. Answer questions about furniture, " +
		"materials, color theory, layouts and where to buy items. Cite sources when you use search results."
)

func styledImagePrompt(roomDescription, styleName, aspectRatio string) string {
	return fmt.Sprintf("A photorealistic interior design photograph of this room redesigned in %s style.\n\n"+
		"The room: %s\n\n"+
		"Keep its layout, architecture, windows, doors and camera perspective. Replace furniture, decor, "+
		"textiles and lighting to fully express the %s aesthetic. Natural light, magazine quality, "+
		"composed for a %s frame. No text, no people, no watermarks.",
		styleName, strings.TrimSpace(roomDescription), styleName, aspectRatio)
}

func styleDetailsPrompt(styleName string) string {
	return fmt.Sprintf("This image shows a room designed in %s style. Return JSON with: "+
		"\"description\": a two to three sentence description of the design; "+
		"\"color_palette\": exactly 5 hex color codes that appear in the design; "+
		"\"furniture_recommendations\": 3 to 5 purchasable pieces that fit the design, each with "+
		"\"name\", \"description\", \"price\" (a formatted price string), \"link\" (a store search URL) "+
		"and \"imageUrl\" (a representative image URL).", styleName)
}

func refinePrompt(instruction, styleName string) string {
	return fmt.Sprintf("Edit this %s style interior design photograph. Apply only this change: %s. "+
		"Keep everything else (camera angle, room layout, other furniture, lighting unless asked) unchanged "+
		"and keep the result photorealistic.", styleName, strings.TrimSpace(instruction))
}

func storyPrompt(styleName, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write one evocative paragraph (80-120 words) telling the story of a day in this %s style room: "+
		"who lives here, how the space feels, the details they love. Second person, present tense, no title.", styleName)
	if c := strings.TrimSpace(context); c != "" {
		b.WriteString("\n\nAbout the room: ")
		b.WriteString(c)
	}
	return b.String()
}

func continueStoryPrompt(history []models.ChatMessage, styleName, context string) string {
	var b strings.Builder
	b.WriteString(storyPrompt(styleName, context))
	b.WriteString("\n\nThe story so far:\n")
	b.WriteString(flattenTranscript(history))
	b.WriteString("\nContinue the story with exactly one new paragraph that follows the latest request. " +
		"Do not repeat earlier paragraphs.")
	return b.String()
}

// flattenTranscript renders chat turns as a plain transcript.
func flattenTranscript(history []models.ChatMessage) string {
	var b strings.Builder
	for _, m := range history {
		speaker := "User"
		if m.Role == models.RoleModel {
			speaker = "Writer"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, strings.TrimSpace(m.Text))
	}
	return b.String()
}

// styleDetailsSchema is the response schema for GenerateStyleDetails.
func styleDetailsSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"description": str("Short description of the design"),
			"color_palette": {
				Type:     genai.TypeArray,
				Items:    str("Hex color code, e.g. #A1B2C3"),
				MinItems: genai.Ptr[int64](5),
				MaxItems: genai.Ptr[int64](5),
			},
			"furniture_recommendations": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        str("Product name"),
						"description": str("Why it fits the design"),
						"price":       str("Formatted price"),
						"link":        str("Purchase or search URL"),
						"imageUrl":    str("Product image URL"),
					},
					Required: []string{"name", "description", "price", "link", "imageUrl"},
				},
			},
		},
		Required: []string{"description", "color_palette", "furniture_recommendations"},
	}
}
