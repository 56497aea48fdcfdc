package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/mocks"
	"github.com/imajus/ember-nft/internal/prompt"
)

var (
	addrA = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	addrB = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	addrC = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func setupComposer(t *testing.T) (*mocks.MockChainClient, prompt.Composer) {
	t.Helper()

	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	chainClient := mocks.NewMockChainClient(ctrl)
	return chainClient, prompt.NewComposer(chainClient)
}

func TestComposeRootCollection(t *testing.T) {
	chainClient, composer := setupComposer(t)

	collection := &domain.Collection{Address: addrA}
	chainClient.EXPECT().Prompt(gomock.Any(), addrA).Return("P1", nil)

	result, err := composer.Compose(context.Background(), collection)
	require.NoError(t, err)
	assert.Equal(t, "P1", result)
}

func TestComposeRemixJoinsLineageOldestFirst(t *testing.T) {
	chainClient, composer := setupComposer(t)

	// C remixes B, which remixes A; lineage comes nearest parent first
	collection := &domain.Collection{Address: addrC, Parent: addrB}
	chainClient.EXPECT().Prompt(gomock.Any(), addrC).Return("P3", nil)
	chainClient.EXPECT().CollectionLineage(gomock.Any(), addrC).Return([]common.Address{addrB, addrA}, nil)
	chainClient.EXPECT().Prompt(gomock.Any(), addrA).Return("P1", nil)
	chainClient.EXPECT().Prompt(gomock.Any(), addrB).Return("P2", nil)

	result, err := composer.Compose(context.Background(), collection)
	require.NoError(t, err)
	assert.Equal(t, "P1 | P2 | P3", result)
}

func TestComposeSkipsUnreadableAncestors(t *testing.T) {
	chainClient, composer := setupComposer(t)

	collection := &domain.Collection{Address: addrC, Parent: addrB}
	chainClient.EXPECT().Prompt(gomock.Any(), addrC).Return("P3", nil)
	chainClient.EXPECT().CollectionLineage(gomock.Any(), addrC).Return([]common.Address{addrB, addrA}, nil)
	chainClient.EXPECT().Prompt(gomock.Any(), addrA).Return("", errors.New("contract call failed"))
	chainClient.EXPECT().Prompt(gomock.Any(), addrB).Return("P2", nil)

	result, err := composer.Compose(context.Background(), collection)
	require.NoError(t, err)
	assert.Equal(t, "P2 | P3", result)
}

func TestComposeLineageFailureFallsBackToOwnPrompt(t *testing.T) {
	chainClient, composer := setupComposer(t)

	collection := &domain.Collection{Address: addrC, Parent: addrB}
	chainClient.EXPECT().Prompt(gomock.Any(), addrC).Return("P3", nil)
	chainClient.EXPECT().CollectionLineage(gomock.Any(), addrC).Return(nil, errors.New("rpc down"))

	result, err := composer.Compose(context.Background(), collection)
	require.NoError(t, err)
	assert.Equal(t, "P3", result)
}

func TestComposeOwnPromptFailure(t *testing.T) {
	chainClient, composer := setupComposer(t)

	collection := &domain.Collection{Address: addrA}
	chainClient.EXPECT().Prompt(gomock.Any(), addrA).Return("", errors.New("contract call failed"))

	_, err := composer.Compose(context.Background(), collection)
	assert.Error(t, err)
}
