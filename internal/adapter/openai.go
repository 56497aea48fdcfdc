package adapter

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient defines an interface for the OpenAI API surface used by the
// generation pipeline to enable mocking
//
//go:generate mockgen -source=openai.go -destination=../mocks/openai.go -package=mocks -mock_names=OpenAIClient=MockOpenAIClient
type OpenAIClient interface {
	// CreateImage generates images from a text prompt
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
	// CreateVariImage generates variations of a source image
	CreateVariImage(ctx context.Context, request openai.ImageVariRequest) (openai.ImageResponse, error)
	// CreateChatCompletion runs a chat completion, used for vision analysis
	// of reference images
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// RealOpenAIClient implements OpenAIClient backed by the official API
type RealOpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new real OpenAI client with the given API key
func NewOpenAIClient(apiKey string) OpenAIClient {
	return &RealOpenAIClient{
		client: openai.NewClient(apiKey),
	}
}

// CreateImage generates images from a text prompt
func (c *RealOpenAIClient) CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error) {
	return c.client.CreateImage(ctx, request)
}

// CreateVariImage generates variations of a source image
func (c *RealOpenAIClient) CreateVariImage(ctx context.Context, request openai.ImageVariRequest) (openai.ImageResponse, error) {
	return c.client.CreateVariImage(ctx, request)
}

// CreateChatCompletion runs a chat completion
func (c *RealOpenAIClient) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return c.client.CreateChatCompletion(ctx, request)
}
