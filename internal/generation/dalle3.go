package generation

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/uri"
)

const (
	// visionInstruction asks the vision model to describe a reference image
	// in terms a text-to-image prompt can reuse
	visionInstruction = "Analyze this reference image and describe its artistic style, color palette, composition, and key visual elements that would be important for generating similar artwork. Focus on style elements that can be replicated."

	// fallbackStyleHint replaces the vision analysis when it fails
	fallbackStyleHint = "inspired by the provided reference image style and aesthetic"

	visionMaxTokens = 300
)

// dalle3Generator generates with DALL-E 3. Reference images cannot be passed
// to the image API directly, so they are described by a vision model and the
// description is folded into the prompt.
type dalle3Generator struct {
	deps Deps
}

func (g *dalle3Generator) Name() string {
	return "dall-e-3"
}

func (g *dalle3Generator) GenerateWithRetry(ctx context.Context, prompt string, referenceRef string, maxAttempts int) (*Result, error) {
	hasReference := referenceRef != ""

	var styleNotes string
	enhanced := prompt
	if hasReference {
		styleNotes = g.analyzeReference(ctx, referenceRef)
		enhanced = fmt.Sprintf("%s. Create this artwork %s. Maintain the visual coherence and artistic direction while making it unique.", prompt, styleNotes)
	}
	enhanced = enhanced + ". " + enhancementSuffix

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := g.deps.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		logger.InfoCtx(ctx, "Generating image",
			zap.String("model", g.Name()),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts))

		resp, err := g.deps.OpenAI.CreateImage(ctx, openai.ImageRequest{
			Model:   openai.CreateImageModelDallE3,
			Prompt:  enhanced,
			N:       1,
			Size:    openai.CreateImageSize1024x1024,
			Quality: openai.CreateImageQualityHD,
			Style:   openai.CreateImageStyleVivid,
		})
		if err == nil {
			if len(resp.Data) == 0 {
				err = domain.ErrNoImageData
			} else {
				var image []byte
				image, err = downloadImage(ctx, g.deps.HTTP, resp.Data[0].URL)
				if err == nil {
					revised := resp.Data[0].RevisedPrompt
					if revised == "" {
						revised = enhanced
					}

					return &Result{
						Image:             image,
						Model:             g.Name(),
						Method:            "AI Generated",
						RevisedPrompt:     revised,
						HasReferenceImage: hasReference,
						ReferenceImageRef: referenceRef,
						StyleNotes:        styleNotes,
					}, nil
				}
			}
		}

		lastErr = err
		logger.WarnCtx(ctx, "Generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == maxAttempts {
			break
		}
		if err := waitBackoff(ctx, g.deps.Clock, attempt); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrGenerationExhausted, maxAttempts, lastErr)
}

// analyzeReference describes the reference image through the vision model.
// Failures degrade to a fixed style hint so generation can proceed.
func (g *dalle3Generator) analyzeReference(ctx context.Context, referenceRef string) string {
	httpURL, err := uri.ToGatewayURL(g.deps.GatewayURL, referenceRef)
	if err != nil {
		logger.WarnCtx(ctx, "Could not resolve reference image, using fallback style hint",
			zap.String("reference", referenceRef),
			zap.Error(err))
		return fallbackStyleHint
	}

	if err := g.deps.Limiter.Acquire(ctx); err != nil {
		return fallbackStyleHint
	}

	resp, err := g.deps.OpenAI.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.deps.VisionModel,
		MaxTokens: visionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: visionInstruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    httpURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	})
	if err != nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		logger.WarnCtx(ctx, "Reference image analysis failed, using fallback style hint",
			zap.String("reference", referenceRef),
			zap.Error(err))
		return fallbackStyleHint
	}

	analysis := resp.Choices[0].Message.Content
	logger.DebugCtx(ctx, "Reference image analyzed", zap.String("analysis", analysis))
	return analysis
}
