package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
	"interior-design-backend/internal/models"
)

const (
	opAnalyzeRoom            = "analyze_room"
	opAnalyzeRoomDetailed    = "analyze_room_detailed"
	opGenerateStyledImage    = "generate_styled_image"
	opGenerateStyleDetails   = "generate_style_details"
	opGenerateStyleVariation = "generate_style_variation"
	opRefineDesign           = "refine_design"
	opGenerateStory          = "generate_story"
	opContinueStory          = "continue_story"
	opChat                   = "chat"

	defaultTimeout = 60 * time.Second
)

// finishReasonNoImage is reported by image-capable models that chose not to draw.
const finishReasonNoImage genai.FinishReason = "NO_IMAGE"

var blockedFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:                       true,
	genai.FinishReason("PROHIBITED_CONTENT"):       true,
	genai.FinishReason("BLOCKLIST"):                true,
	genai.FinishReason("SPII"):                     true,
	genai.FinishReason("IMAGE_SAFETY"):             true,
	genai.FinishReason("IMAGE_PROHIBITED_CONTENT"): true,
}

type Options struct {
	Models         ModelSet
	Policy         Policy
	Timeout        time.Duration
	ThinkingBudget int32
	Logger         logrus.FieldLogger
}

// Gateway wraps the generative provider with prompt composition, error
// classification and the image retry policy. It holds no per-call state.
type Gateway struct {
	provider       Provider
	models         ModelSet
	policy         Policy
	timeout        time.Duration
	thinkingBudget int32
	log            logrus.FieldLogger
}

func New(provider Provider, opts Options) *Gateway {
	g := &Gateway{
		provider:       provider,
		models:         opts.Models,
		policy:         opts.Policy,
		timeout:        opts.Timeout,
		thinkingBudget: opts.ThinkingBudget,
		log:            opts.Logger,
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	if g.policy.MaxAttempts == 0 {
		g.policy = DefaultPolicy()
	}
	if g.policy.OnRetry == nil {
		g.policy.OnRetry = func(attempt int, delay time.Duration, cause *Error) {
			fields := logrus.Fields{"attempt": attempt, "delay_ms": delay.Milliseconds()}
			if cause != nil {
				fields["kind"] = cause.Kind
				fields["error"] = cause.Error()
			}
			g.log.WithFields(fields).Warn("retrying image generation")
		}
	}
	return g
}

// AnalyzeRoom returns a short caption of the room in image.
func (g *Gateway) AnalyzeRoom(ctx context.Context, image models.ImagePayload) (string, error) {
	text, err := g.describe(ctx, g.models.Fast, image, analyzeRoomPrompt, nil)
	return text, withOp(opAnalyzeRoom, err)
}

// AnalyzeRoomDetailed returns a long description used as durable project context.
func (g *Gateway) AnalyzeRoomDetailed(ctx context.Context, image models.ImagePayload) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if g.thinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.thinkingBudget)}
	}
	text, err := g.describe(ctx, g.models.Pro, image, analyzeRoomDetailedPrompt, cfg)
	return text, withOp(opAnalyzeRoomDetailed, err)
}

func (g *Gateway) describe(ctx context.Context, model string, image models.ImagePayload, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if !image.Present() {
		return "", ErrImageRequired
	}
	resp, err := g.generateContent(ctx, model, imageAndText(image, prompt), cfg)
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", &Error{Kind: KindProviderError, Reason: "no text returned by model"}
	}
	return text, nil
}

// GenerateStyledImage renders the room in image redesigned in styleName at aspectRatio.
// The image model only takes text, so the room reaches it as roomDescription; when that
// is blank the image is captioned first. Retries under the gateway policy; quota errors
// return immediately.
func (g *Gateway) GenerateStyledImage(ctx context.Context, image models.ImagePayload, roomDescription, styleName, aspectRatio string) (models.ImagePayload, error) {
	if !image.Present() {
		return models.ImagePayload{}, withOp(opGenerateStyledImage, ErrImageRequired)
	}

	if strings.TrimSpace(roomDescription) == "" {
		caption, err := g.AnalyzeRoom(ctx, image)
		if err != nil {
			return models.ImagePayload{}, withOp(opGenerateStyledImage, err)
		}
		roomDescription = caption
	}

	prompt := styledImagePrompt(roomDescription, styleName, aspectRatio)
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
		OutputMIMEType: "image/jpeg",
	}

	var out models.ImagePayload
	err := g.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		g.log.WithFields(logrus.Fields{"op": opGenerateStyledImage, "style": styleName, "attempt": attempt}).Debug("requesting styled image")

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.provider.GenerateImages(callCtx, g.models.Image, prompt, cfg)
		if err != nil {
			return Classify(err)
		}
		img, err := firstGeneratedImage(resp)
		if err != nil {
			return err
		}
		out = img
		return nil
	})
	if err != nil {
		return models.ImagePayload{}, withOp(opGenerateStyledImage, err)
	}
	return out, nil
}

// GenerateStyleVariation produces a complete variation: a styled image and the
// details generated from that new image. Either failure aborts the whole call.
func (g *Gateway) GenerateStyleVariation(ctx context.Context, image models.ImagePayload, roomDescription, styleName, aspectRatio string) (models.StyleVariation, error) {
	styled, err := g.GenerateStyledImage(ctx, image, roomDescription, styleName, aspectRatio)
	if err != nil {
		return models.StyleVariation{}, withOp(opGenerateStyleVariation, err)
	}

	details, err := g.GenerateStyleDetails(ctx, styled, styleName)
	if err != nil {
		return models.StyleVariation{}, withOp(opGenerateStyleVariation, err)
	}

	return models.StyleVariation{
		StyleName:                styleName,
		Description:              details.Description,
		ColorPalette:             details.ColorPalette,
		FurnitureRecommendations: details.FurnitureRecommendations,
		Image:                    styled,
		Iterations:               []models.Iteration{},
		Comments:                 []models.Comment{},
	}, nil
}

// RefineDesign applies a free-text edit to image and regenerates details for the result.
// Nothing is persisted; the caller decides whether to commit.
func (g *Gateway) RefineDesign(ctx context.Context, image models.ImagePayload, instruction, styleName string) (models.Refinement, error) {
	if !image.Present() {
		return models.Refinement{}, withOp(opRefineDesign, ErrImageRequired)
	}

	contents := imageAndText(image, refinePrompt(instruction, styleName))

	var refined models.ImagePayload
	err := g.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		g.log.WithFields(logrus.Fields{"op": opRefineDesign, "style": styleName, "attempt": attempt}).Debug("requesting image edit")

		resp, err := g.generateContent(ctx, g.models.ImageEdit, contents, nil)
		if err != nil {
			return err
		}
		img, err := inlineImage(resp)
		if err != nil {
			return err
		}
		refined = img
		return nil
	})
	if err != nil {
		return models.Refinement{}, withOp(opRefineDesign, err)
	}

	details, err := g.GenerateStyleDetails(ctx, refined, styleName)
	if err != nil {
		return models.Refinement{}, withOp(opRefineDesign, err)
	}

	return models.Refinement{Image: refined, Details: details}, nil
}

// generateContent performs one timed GenerateContent call and classifies the outcome,
// including content-safety blocks reported in an otherwise successful response.
func (g *Gateway) generateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.provider.GenerateContent(callCtx, model, contents, cfg)
	if err != nil {
		classified := Classify(err)
		g.log.WithFields(logrus.Fields{"model": model, "kind": classified.Kind, "elapsed_ms": time.Since(start).Milliseconds()}).Debug("provider call failed")
		return nil, classified
	}
	if blocked := blockedError(resp); blocked != nil {
		return nil, blocked
	}
	g.log.WithFields(logrus.Fields{"model": model, "elapsed_ms": time.Since(start).Milliseconds()}).Debug("provider call completed")
	return resp, nil
}

func imageAndText(image models.ImagePayload, text string) []*genai.Content {
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: image.MimeType, Data: image.Data}},
		genai.NewPartFromText(text),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func blockedError(resp *genai.GenerateContentResponse) *Error {
	if resp == nil {
		return nil
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		reason := string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			reason += " (" + fb.BlockReasonMessage + ")"
		}
		return &Error{Kind: KindBlocked, Reason: reason}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		if fr := resp.Candidates[0].FinishReason; blockedFinishReasons[fr] {
			return &Error{Kind: KindBlocked, Reason: string(fr)}
		}
	}
	return nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// inlineImage extracts the first image part of an edit response.
func inlineImage(resp *genai.GenerateContentResponse) (models.ImagePayload, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return models.ImagePayload{}, &Error{Kind: kindNoImage, Reason: "no candidates"}
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == finishReasonNoImage {
		return models.ImagePayload{}, &Error{Kind: kindNoImage, Reason: string(cand.FinishReason)}
	}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			return models.ImagePayload{MimeType: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
		}
	}
	return models.ImagePayload{}, &Error{Kind: kindNoImage, Reason: "response had no image part"}
}

func firstGeneratedImage(resp *genai.GenerateImagesResponse) (models.ImagePayload, error) {
	if resp == nil {
		return models.ImagePayload{}, &Error{Kind: kindNoImage, Reason: "empty response"}
	}
	var filtered string
	for _, gi := range resp.GeneratedImages {
		if gi == nil {
			continue
		}
		if gi.Image != nil && len(gi.Image.ImageBytes) > 0 {
			mime := gi.Image.MIMEType
			if mime == "" {
				mime = "image/jpeg"
			}
			return models.ImagePayload{MimeType: mime, Data: gi.Image.ImageBytes}, nil
		}
		if gi.RAIFilteredReason != "" {
			filtered = gi.RAIFilteredReason
		}
	}
	if filtered != "" {
		return models.ImagePayload{}, &Error{Kind: KindBlocked, Reason: filtered}
	}
	return models.ImagePayload{}, &Error{Kind: kindNoImage, Reason: "no images generated"}
}
