package chain_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imajus/ember-nft/internal/chain"
	"github.com/imajus/ember-nft/internal/contracts"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/mocks"
)

const testPrivateKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	factoryAddr = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	tokenAddr   = common.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
)

func setupChainClient(t *testing.T) (*mocks.MockEthClient, *mocks.MockClock, chain.Client) {
	t.Helper()

	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	eth := mocks.NewMockEthClient(ctrl)
	clock := mocks.NewMockClock(ctrl)

	client, err := chain.NewClient(eth, clock, factoryAddr, testPrivateKey, time.Minute)
	require.NoError(t, err)
	return eth, clock, client
}

func TestNewClientRejectsInvalidKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := chain.NewClient(mocks.NewMockEthClient(ctrl), mocks.NewMockClock(ctrl), factoryAddr, "not-a-key", time.Minute)
	assert.Error(t, err)
}

func TestCurrentSupply(t *testing.T) {
	eth, _, client := setupChainClient(t)

	packed, err := contracts.CollectionABI.Methods["getCurrentSupply"].Outputs.Pack(big.NewInt(5))
	require.NoError(t, err)

	eth.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, tokenAddr, *msg.To)
			return packed, nil
		})

	supply, err := client.CurrentSupply(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), supply.Int64())
}

func TestIsTokenGenerated(t *testing.T) {
	eth, _, client := setupChainClient(t)

	packed, err := contracts.CollectionABI.Methods["isTokenGenerated"].Outputs.Pack(true)
	require.NoError(t, err)

	eth.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), nil).
		Return(packed, nil)

	generated, err := client.IsTokenGenerated(context.Background(), tokenAddr, big.NewInt(7))
	require.NoError(t, err)
	assert.True(t, generated)
}

func TestPromptAndReferenceImage(t *testing.T) {
	eth, _, client := setupChainClient(t)

	promptData, err := contracts.CollectionABI.Methods["getPrompt"].Outputs.Pack("A glowing fox")
	require.NoError(t, err)
	refData, err := contracts.CollectionABI.Methods["getReferenceImageUrl"].Outputs.Pack("ipfs://QmRef")
	require.NoError(t, err)

	gomock.InOrder(
		eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(promptData, nil),
		eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(refData, nil),
	)

	prompt, err := client.Prompt(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, "A glowing fox", prompt)

	ref, err := client.ReferenceImageURL(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://QmRef", ref)
}

func TestAllCollections(t *testing.T) {
	eth, _, client := setupChainClient(t)

	creator := common.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC")
	records := []contracts.CollectionInfo{{
		CollectionId:    big.NewInt(1),
		ContractAddress: tokenAddr,
		Creator:         creator,
		Name:            "Foxes",
		Symbol:          "FOX",
		Parent:          common.Address{},
	}}
	packed, err := contracts.FactoryABI.Methods["getAllCollections"].Outputs.Pack(records)
	require.NoError(t, err)

	eth.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, factoryAddr, *msg.To)
			return packed, nil
		})

	collections, err := client.AllCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, tokenAddr, collections[0].Address)
	assert.Equal(t, creator, collections[0].Creator)
	assert.Equal(t, "Foxes", collections[0].Name)
	assert.False(t, collections[0].HasParent())
}

func TestCollectionLineage(t *testing.T) {
	eth, _, client := setupChainClient(t)

	parentA := common.HexToAddress("0x0000000000000000000000000000000000000001")
	parentB := common.HexToAddress("0x0000000000000000000000000000000000000002")
	packed, err := contracts.FactoryABI.Methods["getCollectionLineage"].Outputs.Pack([]common.Address{parentA, parentB})
	require.NoError(t, err)

	eth.EXPECT().
		CallContract(gomock.Any(), gomock.Any(), nil).
		Return(packed, nil)

	lineage, err := client.CollectionLineage(context.Background(), tokenAddr)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{parentA, parentB}, lineage)
}

func TestLatestBlock(t *testing.T) {
	eth, _, client := setupChainClient(t)

	eth.EXPECT().
		HeaderByNumber(gomock.Any(), nil).
		Return(&types.Header{Number: big.NewInt(123)}, nil)

	latest, err := client.LatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123), latest)
}

func TestUpdateTokenURI(t *testing.T) {
	eth, clock, client := setupChainClient(t)

	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()

	expectedData, err := contracts.FactoryABI.Pack("updateTokenURI", tokenAddr, big.NewInt(7), "ipfs://QmMeta")
	require.NoError(t, err)

	eth.EXPECT().
		EstimateGas(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
			assert.Equal(t, factoryAddr, *msg.To)
			assert.Equal(t, expectedData, msg.Data)
			return uint64(90000), nil
		})
	eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil)
	eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(31337), nil)
	eth.EXPECT().
		SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			assert.Equal(t, factoryAddr, *tx.To())
			assert.Equal(t, uint64(3), tx.Nonce())
			assert.Equal(t, uint64(90000), tx.Gas())
			assert.Equal(t, expectedData, tx.Data())
			return nil
		})
	eth.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	err = client.UpdateTokenURI(context.Background(), tokenAddr, big.NewInt(7), "ipfs://QmMeta")
	require.NoError(t, err)
}

func TestUpdateTokenURISerializesNoncesAcrossConcurrentWrites(t *testing.T) {
	eth, clock, client := setupChainClient(t)

	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()

	eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(90000), nil).Times(2)
	eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil).Times(2)
	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(31337), nil).Times(2)
	eth.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil).
		Times(2)

	// The pending nonce only advances once the previous transaction has been
	// broadcast, mirroring a node's pending pool
	var mu sync.Mutex
	pending := uint64(3)
	var sent []uint64
	eth.EXPECT().
		PendingNonceAt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, common.Address) (uint64, error) {
			mu.Lock()
			defer mu.Unlock()
			return pending, nil
		}).
		Times(2)
	eth.EXPECT().
		SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			mu.Lock()
			defer mu.Unlock()
			sent = append(sent, tx.Nonce())
			pending++
			return nil
		}).
		Times(2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		tokenID := big.NewInt(int64(7 + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, client.UpdateTokenURI(context.Background(), tokenAddr, tokenID, "ipfs://QmMeta"))
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []uint64{3, 4}, sent)
}

func TestUpdateTokenURIRevertMeansAlreadyGenerated(t *testing.T) {
	eth, _, client := setupChainClient(t)

	eth.EXPECT().
		EstimateGas(gomock.Any(), gomock.Any()).
		Return(uint64(0), errors.New("execution reverted: Token already generated"))

	err := client.UpdateTokenURI(context.Background(), tokenAddr, big.NewInt(7), "ipfs://QmMeta")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyGenerated)
}

func TestUpdateTokenURIFailedReceiptMeansAlreadyGenerated(t *testing.T) {
	eth, clock, client := setupChainClient(t)

	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()

	eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(90000), nil)
	eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil)
	eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(31337), nil)
	eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(nil)
	eth.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil)

	err := client.UpdateTokenURI(context.Background(), tokenAddr, big.NewInt(7), "ipfs://QmMeta")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyGenerated)
}

func TestUpdateTokenURIReceiptTimeout(t *testing.T) {
	eth, clock, client := setupChainClient(t)

	start := time.Unix(1700000000, 0)
	// First Now() sets the deadline, the second is already past it
	gomock.InOrder(
		clock.EXPECT().Now().Return(start),
		clock.EXPECT().Now().Return(start.Add(2*time.Minute)),
	)

	eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(90000), nil)
	eth.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(3), nil)
	eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(31337), nil)
	eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(nil)
	eth.EXPECT().
		TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(nil, ethereum.NotFound)

	err := client.UpdateTokenURI(context.Background(), tokenAddr, big.NewInt(7), "ipfs://QmMeta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
