package generation

import (
	"context"
	"fmt"
	"io"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
)

// variationInputSize is the edge length the variation API input is scaled to
const variationInputSize = 256

// dalle2Generator generates with DALL-E 2, which supports true image
// variations: a reference image is downscaled and sent to the variation API
// instead of being described in text.
type dalle2Generator struct {
	deps Deps
}

func (g *dalle2Generator) Name() string {
	return "dall-e-2"
}

func (g *dalle2Generator) GenerateWithRetry(ctx context.Context, prompt string, referenceRef string, maxAttempts int) (*Result, error) {
	if referenceRef != "" {
		return g.generateVariation(ctx, prompt, referenceRef, maxAttempts)
	}
	return g.generateText(ctx, prompt, maxAttempts)
}

// generateText is plain text-to-image generation
func (g *dalle2Generator) generateText(ctx context.Context, prompt string, maxAttempts int) (*Result, error) {
	enhanced := prompt + ". " + enhancementSuffix

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := g.createFromPrompt(ctx, enhanced)
		if err == nil {
			return result, nil
		}

		lastErr = err
		logger.WarnCtx(ctx, "Text generation attempt failed",
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

// generateVariation drives the variation API from the reference image. When
// every variation attempt fails it makes a single text fallback with a style
// described prompt before giving up.
func (g *dalle2Generator) generateVariation(ctx context.Context, prompt string, referenceRef string, maxAttempts int) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		logger.InfoCtx(ctx, "Generating variation from reference image",
			zap.String("reference", referenceRef),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts))

		result, err := g.createVariation(ctx, prompt, referenceRef)
		if err == nil {
			return result, nil
		}

		lastErr = err
		logger.WarnCtx(ctx, "Variation attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == maxAttempts {
			break
		}
		if err := waitBackoff(ctx, g.deps.Clock, attempt); err != nil {
			return nil, err
		}
	}

	// Single non-retried fallback keeping the reference's influence in text
	logger.WarnCtx(ctx, "Variation generation exhausted, falling back to text generation",
		zap.String("reference", referenceRef))

	stylePrompt := prompt + ". Create artwork inspired by and matching the style of the reference image. " + enhancementSuffix
	result, err := g.createFromPrompt(ctx, stylePrompt)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Fallback generation also failed"))
		return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrGenerationExhausted, maxAttempts, lastErr)
	}

	result.HasReferenceImage = true
	result.ReferenceImageRef = referenceRef
	result.StyleNotes = "Generated with text prompt inspired by reference image (variation API failed)"
	result.RevisedPrompt = stylePrompt
	return result, nil
}

// createFromPrompt makes one text-to-image request
func (g *dalle2Generator) createFromPrompt(ctx context.Context, prompt string) (*Result, error) {
	if err := g.deps.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := g.deps.OpenAI.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE2,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, domain.ErrNoImageData
	}

	image, err := downloadImage(ctx, g.deps.HTTP, resp.Data[0].URL)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:  image,
		Model:  g.Name(),
		Method: "AI Generated",
		// The variation-era API does not revise prompts
		RevisedPrompt: prompt,
	}, nil
}

// createVariation makes one variation request from the reference image
func (g *dalle2Generator) createVariation(ctx context.Context, prompt string, referenceRef string) (*Result, error) {
	reference, err := g.deps.Store.Fetch(ctx, referenceRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reference image: %w", err)
	}

	imageFile, cleanup, err := g.prepareVariationInput(reference)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := g.deps.Limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	resp, err := g.deps.OpenAI.CreateVariImage(ctx, openai.ImageVariRequest{
		Model:          openai.CreateImageModelDallE2,
		Image:          imageFile,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, domain.ErrNoImageData
	}

	image, err := downloadImage(ctx, g.deps.HTTP, resp.Data[0].URL)
	if err != nil {
		return nil, err
	}

	return &Result{
		Image:             image,
		Model:             g.Name(),
		Method:            "AI Generated",
		RevisedPrompt:     "Variation of reference image inspired by: " + prompt,
		HasReferenceImage: true,
		ReferenceImageRef: referenceRef,
		StyleNotes:        "Generated using image variation from reference image",
	}, nil
}

// prepareVariationInput downscales the reference to a square PNG and stages
// it in a temp file. The variation API only accepts file-backed uploads.
func (g *dalle2Generator) prepareVariationInput(reference []byte) (*os.File, func(), error) {
	scaled, err := g.deps.Images.ScalePNG(reference, variationInputSize, variationInputSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare reference image: %w", err)
	}

	f, err := g.deps.Files.CreateTemp(g.deps.Files.TempDir(), "variation-input-*.png")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = g.deps.Files.Remove(f.Name())
	}

	if _, err := f.Write(scaled); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}

	return f, cleanup, nil
}
