package listener_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imajus/ember-nft/internal/chain"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/generation"
	"github.com/imajus/ember-nft/internal/listener"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/mocks"
)

var collectionAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")

type listenerMocks struct {
	chain     *mocks.MockChainClient
	sub       *mocks.MockSubscriber
	store     *mocks.MockContentStore
	generator *mocks.MockGenerator
	composer  *mocks.MockComposer
	limiter   *mocks.MockLimiter
}

func setupListener(t *testing.T, cfg listener.Config) (*listenerMocks, *listener.Listener) {
	t.Helper()

	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	m := &listenerMocks{
		chain:     mocks.NewMockChainClient(ctrl),
		sub:       mocks.NewMockSubscriber(ctrl),
		store:     mocks.NewMockContentStore(ctrl),
		generator: mocks.NewMockGenerator(ctrl),
		composer:  mocks.NewMockComposer(ctrl),
		limiter:   mocks.NewMockLimiter(ctrl),
	}

	l := listener.NewListener(cfg,
		m.chain, m.sub, m.store, m.generator, m.composer, m.limiter,
		listener.NewRegistry())
	return m, l
}

func testCollection() domain.Collection {
	return domain.Collection{
		ID:      big.NewInt(1),
		Address: collectionAddr,
		Creator: common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
}

func TestDriveGeneratesAndWritesTokenURI(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 3})

	collection := testCollection()
	tokenID := big.NewInt(7)

	m.chain.EXPECT().
		IsTokenGenerated(gomock.Any(), collectionAddr, tokenID).
		Return(false, nil)
	m.composer.EXPECT().
		Compose(gomock.Any(), gomock.Any()).
		Return("A glowing fox", nil)
	m.chain.EXPECT().
		ReferenceImageURL(gomock.Any(), collectionAddr).
		Return("https://gateway.pinata.cloud/ipfs/QmRef", nil)
	m.generator.EXPECT().
		GenerateWithRetry(gomock.Any(), "A glowing fox", "ipfs://QmRef", 3).
		Return(&generation.Result{
			Image:         []byte("png-bytes"),
			Model:         "dall-e-3",
			Method:        "AI Generated",
			RevisedPrompt: "A luminous fox",
		}, nil)
	m.store.EXPECT().
		UploadImageAndMetadata(gomock.Any(), []byte("png-bytes"), gomock.Any(), "nft-"+collectionAddr.Hex()+"-7").
		DoAndReturn(func(_ context.Context, _ []byte, meta *domain.TokenMetadata, _ string) (string, error) {
			assert.Equal(t, "Token #7", meta.Name)
			return "QmMeta", nil
		})
	m.chain.EXPECT().
		UpdateTokenURI(gomock.Any(), collectionAddr, tokenID, "ipfs://QmMeta").
		Return(nil)

	require.NoError(t, l.Drive(context.Background(), collection, tokenID))
}

func TestDriveSkipsGeneratedToken(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 3})

	tokenID := big.NewInt(7)
	m.chain.EXPECT().
		IsTokenGenerated(gomock.Any(), collectionAddr, tokenID).
		Return(true, nil)

	// No generation, upload, or on-chain write expected
	require.NoError(t, l.Drive(context.Background(), testCollection(), tokenID))
}

func TestDriveTreatsURIRaceAsSuccess(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 3})

	collection := testCollection()
	tokenID := big.NewInt(7)

	m.chain.EXPECT().IsTokenGenerated(gomock.Any(), collectionAddr, tokenID).Return(false, nil)
	m.composer.EXPECT().Compose(gomock.Any(), gomock.Any()).Return("A glowing fox", nil)
	m.chain.EXPECT().ReferenceImageURL(gomock.Any(), collectionAddr).Return("", nil)
	m.generator.EXPECT().
		GenerateWithRetry(gomock.Any(), "A glowing fox", "", 3).
		Return(&generation.Result{Image: []byte("png-bytes")}, nil)
	m.store.EXPECT().
		UploadImageAndMetadata(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("QmMeta", nil)
	m.chain.EXPECT().
		UpdateTokenURI(gomock.Any(), collectionAddr, tokenID, "ipfs://QmMeta").
		Return(domain.ErrAlreadyGenerated)

	require.NoError(t, l.Drive(context.Background(), collection, tokenID))
}

func TestDriveFailsWhenGenerationExhausted(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 2})

	collection := testCollection()
	tokenID := big.NewInt(7)

	m.chain.EXPECT().IsTokenGenerated(gomock.Any(), collectionAddr, tokenID).Return(false, nil)
	m.composer.EXPECT().Compose(gomock.Any(), gomock.Any()).Return("A glowing fox", nil)
	m.chain.EXPECT().ReferenceImageURL(gomock.Any(), collectionAddr).Return("", nil)
	m.generator.EXPECT().
		GenerateWithRetry(gomock.Any(), "A glowing fox", "", 2).
		Return(nil, domain.ErrGenerationExhausted)

	err := l.Drive(context.Background(), collection, tokenID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationExhausted)
}

func TestReconcileScansSupplyInOrderAndSkipsGenerated(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 1, MintLookbackBlocks: 10})

	collection := testCollection()

	m.chain.EXPECT().AllCollections(gomock.Any()).Return([]domain.Collection{collection}, nil)
	m.chain.EXPECT().CurrentSupply(gomock.Any(), collectionAddr).Return(big.NewInt(5), nil)

	generatedOnChain := map[int64]bool{1: true, 2: true, 4: true}
	m.chain.EXPECT().
		IsTokenGenerated(gomock.Any(), collectionAddr, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ common.Address, tokenID *big.Int) (bool, error) {
			return generatedOnChain[tokenID.Int64()], nil
		}).
		Times(5)

	var driven []int64
	m.composer.EXPECT().Compose(gomock.Any(), gomock.Any()).Return("A glowing fox", nil).Times(2)
	m.chain.EXPECT().ReferenceImageURL(gomock.Any(), collectionAddr).Return("", nil).Times(2)
	m.generator.EXPECT().
		GenerateWithRetry(gomock.Any(), "A glowing fox", "", 1).
		Return(&generation.Result{Image: []byte("png-bytes")}, nil).
		Times(2)
	m.store.EXPECT().
		UploadImageAndMetadata(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("QmMeta", nil).
		Times(2)
	m.chain.EXPECT().
		UpdateTokenURI(gomock.Any(), collectionAddr, gomock.Any(), "ipfs://QmMeta").
		DoAndReturn(func(_ context.Context, _ common.Address, tokenID *big.Int, _ string) error {
			driven = append(driven, tokenID.Int64())
			return nil
		}).
		Times(2)

	m.chain.EXPECT().LatestBlock(gomock.Any()).Return(uint64(100), nil)
	m.sub.EXPECT().FilterMinted(gomock.Any(), collectionAddr, uint64(90)).Return(nil, nil)
	// Whether the live subscription attaches before Close detaches the
	// watcher depends on goroutine scheduling
	m.sub.EXPECT().
		SubscribeTokenMinted(gomock.Any(), collectionAddr, gomock.Any()).
		Return(nil).
		MaxTimes(1)

	require.NoError(t, l.Reconcile(context.Background()))
	l.Close()

	assert.Equal(t, []int64{3, 5}, driven)
}

func TestReconcileDoesNotWatchSameCollectionTwice(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 1, MintLookbackBlocks: 10})

	collection := testCollection()

	m.chain.EXPECT().
		AllCollections(gomock.Any()).
		Return([]domain.Collection{collection, collection}, nil)

	// Only one watcher runs the catch-up scan and subscription
	m.chain.EXPECT().CurrentSupply(gomock.Any(), collectionAddr).Return(big.NewInt(0), nil)
	m.chain.EXPECT().LatestBlock(gomock.Any()).Return(uint64(100), nil)
	m.sub.EXPECT().FilterMinted(gomock.Any(), collectionAddr, uint64(90)).Return(nil, nil)
	// Whether the live subscription attaches before Close detaches the
	// watcher depends on goroutine scheduling
	m.sub.EXPECT().
		SubscribeTokenMinted(gomock.Any(), collectionAddr, gomock.Any()).
		Return(nil).
		MaxTimes(1)

	require.NoError(t, l.Reconcile(context.Background()))
	l.Close()
}

func TestReconcileSweepsRecentMints(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 1, MintLookbackBlocks: 200})

	collection := testCollection()
	tokenID := big.NewInt(9)

	m.chain.EXPECT().AllCollections(gomock.Any()).Return([]domain.Collection{collection}, nil)
	m.chain.EXPECT().CurrentSupply(gomock.Any(), collectionAddr).Return(big.NewInt(0), nil)
	// Lookback larger than the chain height clamps to genesis
	m.chain.EXPECT().LatestBlock(gomock.Any()).Return(uint64(100), nil)
	m.sub.EXPECT().
		FilterMinted(gomock.Any(), collectionAddr, uint64(0)).
		Return([]domain.TokenMintedEvent{{Collection: collectionAddr, TokenID: tokenID}}, nil)

	m.chain.EXPECT().
		IsTokenGenerated(gomock.Any(), collectionAddr, tokenID).
		Return(true, nil)
	// Whether the live subscription attaches before Close detaches the
	// watcher depends on goroutine scheduling
	m.sub.EXPECT().
		SubscribeTokenMinted(gomock.Any(), collectionAddr, gomock.Any()).
		Return(nil).
		MaxTimes(1)

	require.NoError(t, l.Reconcile(context.Background()))
	l.Close()
}

func TestCloseDetachesSubscriptionAfterScanCompletes(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 1, MintLookbackBlocks: 10})

	collection := testCollection()

	m.chain.EXPECT().AllCollections(gomock.Any()).Return([]domain.Collection{collection}, nil)
	m.chain.EXPECT().CurrentSupply(gomock.Any(), collectionAddr).Return(big.NewInt(1), nil)
	m.chain.EXPECT().
		IsTokenGenerated(gomock.Any(), collectionAddr, gomock.Any()).
		Return(true, nil)
	m.chain.EXPECT().LatestBlock(gomock.Any()).Return(uint64(100), nil)
	m.sub.EXPECT().FilterMinted(gomock.Any(), collectionAddr, uint64(90)).Return(nil, nil)

	// The live subscription holds until its context is cancelled, like a real
	// websocket subscription would
	subscribed := make(chan struct{})
	m.sub.EXPECT().
		SubscribeTokenMinted(gomock.Any(), collectionAddr, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ common.Address, _ chain.TokenMintedHandler) error {
			close(subscribed)
			<-ctx.Done()
			return ctx.Err()
		})

	require.NoError(t, l.Reconcile(context.Background()))

	// The subscription only attaches once the catch-up scan has finished, so
	// reaching it proves the scan was not cut short
	<-subscribed
	assert.Equal(t, []common.Address{collectionAddr}, l.Watched())

	l.Close()
	assert.Empty(t, l.Watched())
}

func TestReconcilePropagatesFactoryFailure(t *testing.T) {
	m, l := setupListener(t, listener.Config{MaxAttempts: 1})

	m.chain.EXPECT().
		AllCollections(gomock.Any()).
		Return(nil, errors.New("connection refused"))

	err := l.Reconcile(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
