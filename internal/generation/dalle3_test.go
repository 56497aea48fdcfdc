package generation_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/generation"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/mocks"
)

type generatorMocks struct {
	openAI  *mocks.MockOpenAIClient
	http    *mocks.MockHTTPClient
	store   *mocks.MockContentStore
	images  *mocks.MockImageProcessor
	files   *mocks.MockFileSystem
	limiter *mocks.MockLimiter
	clock   *mocks.MockClock
}

func setupGenerator(t *testing.T, variant domain.GenerationVariant) (*generatorMocks, generation.Generator) {
	t.Helper()

	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	m := &generatorMocks{
		openAI:  mocks.NewMockOpenAIClient(ctrl),
		http:    mocks.NewMockHTTPClient(ctrl),
		store:   mocks.NewMockContentStore(ctrl),
		images:  mocks.NewMockImageProcessor(ctrl),
		files:   mocks.NewMockFileSystem(ctrl),
		limiter: mocks.NewMockLimiter(ctrl),
		clock:   mocks.NewMockClock(ctrl),
	}

	gen, err := generation.NewGenerator(variant, generation.Deps{
		OpenAI:      m.openAI,
		HTTP:        m.http,
		Store:       m.store,
		Images:      m.images,
		Files:       m.files,
		Limiter:     m.limiter,
		Clock:       m.clock,
		VisionModel: "gpt-4o",
		GatewayURL:  "https://gateway.pinata.cloud",
	})
	require.NoError(t, err)
	return m, gen
}

// expireImmediately makes backoff waits return without sleeping
func expireImmediately(clock *mocks.MockClock) {
	clock.EXPECT().After(gomock.Any()).DoAndReturn(func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}).AnyTimes()
}

func TestDallE3GenerateSuccess(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)

	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil)
	m.openAI.EXPECT().
		CreateImage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
			assert.Equal(t, openai.CreateImageModelDallE3, req.Model)
			assert.True(t, strings.HasPrefix(req.Prompt, "A glowing fox"))
			assert.Contains(t, req.Prompt, "High quality digital art")
			return openai.ImageResponse{
				Data: []openai.ImageResponseDataInner{{
					URL:           "https://images.example/fox.png",
					RevisedPrompt: "A luminous fox in a forest",
				}},
			}, nil
		})
	m.http.EXPECT().
		GetBytes(gomock.Any(), "https://images.example/fox.png", nil).
		Return([]byte("png-bytes"), nil)

	result, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "", 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), result.Image)
	assert.Equal(t, "dall-e-3", result.Model)
	assert.Equal(t, "AI Generated", result.Method)
	assert.Equal(t, "A luminous fox in a forest", result.RevisedPrompt)
	assert.False(t, result.HasReferenceImage)
}

func TestDallE3RetriesTransientFailures(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)
	expireImmediately(m.clock)

	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		m.openAI.EXPECT().
			CreateImage(gomock.Any(), gomock.Any()).
			Return(openai.ImageResponse{}, errors.New("rate limited")),
		m.openAI.EXPECT().
			CreateImage(gomock.Any(), gomock.Any()).
			Return(openai.ImageResponse{
				Data: []openai.ImageResponseDataInner{{URL: "https://images.example/out.png"}},
			}, nil),
	)
	m.http.EXPECT().
		GetBytes(gomock.Any(), "https://images.example/out.png", nil).
		Return([]byte("png-bytes"), nil)

	result, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "", 3)
	require.NoError(t, err)
	// The provider revised nothing, so the enhanced prompt stands in
	assert.Contains(t, result.RevisedPrompt, "High quality digital art")
}

func TestDallE3ExhaustsAttempts(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)
	expireImmediately(m.clock)

	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil).Times(2)
	m.openAI.EXPECT().
		CreateImage(gomock.Any(), gomock.Any()).
		Return(openai.ImageResponse{}, errors.New("server error")).
		Times(2)

	_, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.Contains(t, err.Error(), "server error")
}

func TestDallE3ReferenceAnalysisFeedsPrompt(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)

	// One acquire for the vision call, one for the image call
	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil).Times(2)
	m.openAI.EXPECT().
		CreateChatCompletion(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
			assert.Equal(t, "gpt-4o", req.Model)
			require.Len(t, req.Messages, 1)
			require.Len(t, req.Messages[0].MultiContent, 2)
			assert.Equal(t,
				"https://gateway.pinata.cloud/ipfs/QmRef",
				req.Messages[0].MultiContent[1].ImageURL.URL)
			return openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{{
					Message: openai.ChatCompletionMessage{Content: "in a watercolor style with pastel tones"},
				}},
			}, nil
		})
	m.openAI.EXPECT().
		CreateImage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
			assert.Contains(t, req.Prompt, "in a watercolor style with pastel tones")
			return openai.ImageResponse{
				Data: []openai.ImageResponseDataInner{{URL: "https://images.example/out.png"}},
			}, nil
		})
	m.http.EXPECT().
		GetBytes(gomock.Any(), "https://images.example/out.png", nil).
		Return([]byte("png-bytes"), nil)

	result, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "ipfs://QmRef", 3)
	require.NoError(t, err)
	assert.True(t, result.HasReferenceImage)
	assert.Equal(t, "ipfs://QmRef", result.ReferenceImageRef)
	assert.Equal(t, "in a watercolor style with pastel tones", result.StyleNotes)
}

func TestDallE3VisionFailureFallsBackToStyleHint(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)

	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil).Times(2)
	m.openAI.EXPECT().
		CreateChatCompletion(gomock.Any(), gomock.Any()).
		Return(openai.ChatCompletionResponse{}, errors.New("vision unavailable"))
	m.openAI.EXPECT().
		CreateImage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req openai.ImageRequest) (openai.ImageResponse, error) {
			assert.Contains(t, req.Prompt, "inspired by the provided reference image style and aesthetic")
			return openai.ImageResponse{
				Data: []openai.ImageResponseDataInner{{URL: "https://images.example/out.png"}},
			}, nil
		})
	m.http.EXPECT().
		GetBytes(gomock.Any(), "https://images.example/out.png", nil).
		Return([]byte("png-bytes"), nil)

	result, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "ipfs://QmRef", 3)
	require.NoError(t, err)
	assert.True(t, result.HasReferenceImage)
}

func TestDallE3EmptyResponseCountsAsFailure(t *testing.T) {
	m, gen := setupGenerator(t, domain.VariantDallE3)

	m.limiter.EXPECT().Acquire(gomock.Any()).Return(nil)
	m.openAI.EXPECT().
		CreateImage(gomock.Any(), gomock.Any()).
		Return(openai.ImageResponse{}, nil)

	_, err := gen.GenerateWithRetry(context.Background(), "A glowing fox", "", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
	assert.Contains(t, err.Error(), domain.ErrNoImageData.Error())
}
