// Package generation produces token artwork through OpenAI image models,
// with per-attempt backoff and provider-specific reference image handling.
package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/adapter"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/ipfs"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/ratelimit"
)

// enhancementSuffix is appended to every outbound prompt
const enhancementSuffix = "High quality digital art, detailed, vibrant colors, professional artwork suitable for NFT collection."

// Result holds a single successful generation
type Result struct {
	// Image is the generated artwork bytes
	Image []byte
	// Model is the provider model that produced the image
	Model string
	// Method describes how the image was produced
	Method string
	// RevisedPrompt is the provider's rewritten prompt, or the prompt sent
	// when the provider does not revise
	RevisedPrompt string
	// HasReferenceImage reports whether a reference image guided generation
	HasReferenceImage bool
	// ReferenceImageRef is the reference used, empty if none
	ReferenceImageRef string
	// StyleNotes describes how the reference influenced the output
	StyleNotes string
}

// Generator produces token artwork from a prompt and an optional reference
// image
//
//go:generate mockgen -source=generator.go -destination=../mocks/generator.go -package=mocks -mock_names=Generator=MockGenerator
type Generator interface {
	// Name returns the provider model name
	Name() string

	// GenerateWithRetry generates artwork, retrying transient failures up to
	// maxAttempts times with exponential backoff
	GenerateWithRetry(ctx context.Context, prompt string, referenceRef string, maxAttempts int) (*Result, error)
}

// Deps bundles the collaborators shared by all generators
type Deps struct {
	OpenAI  adapter.OpenAIClient
	HTTP    adapter.HTTPClient
	Store   ipfs.Client
	Images  adapter.ImageProcessor
	Files   adapter.FileSystem
	Limiter ratelimit.Limiter
	Clock   adapter.Clock

	// VisionModel analyzes reference images for the dall-e-3 pipeline
	VisionModel string
	// GatewayURL resolves reference images to URLs the provider can fetch
	GatewayURL string
}

// NewGenerator creates the generator for the given variant
func NewGenerator(variant domain.GenerationVariant, deps Deps) (Generator, error) {
	switch variant {
	case domain.VariantDallE2:
		return &dalle2Generator{deps: deps}, nil
	case domain.VariantDallE3:
		return &dalle3Generator{deps: deps}, nil
	default:
		return nil, fmt.Errorf("unsupported generation variant %q", variant)
	}
}

// waitBackoff sleeps 2^attempt seconds, cancellable through the context
func waitBackoff(ctx context.Context, clock adapter.Clock, attempt int) error {
	backoff := time.Duration(1<<attempt) * time.Second

	logger.DebugCtx(ctx, "Backing off before retry",
		zap.Int("attempt", attempt),
		zap.Duration("backoff", backoff))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(backoff):
		return nil
	}
}

// downloadImage fetches the generated image from the provider's result URL
func downloadImage(ctx context.Context, httpClient adapter.HTTPClient, url string) ([]byte, error) {
	if url == "" {
		return nil, domain.ErrNoImageData
	}

	data, err := httpClient.GetBytes(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated image: %w", err)
	}

	return data, nil
}
