// Package chain provides read, write, and subscription access to the
// collection factory and its deployed collection contracts.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/imajus/ember-nft/internal/adapter"
	"github.com/imajus/ember-nft/internal/contracts"
	"github.com/imajus/ember-nft/internal/domain"
)

// receiptPollInterval is how often a pending transaction receipt is polled
const receiptPollInterval = 2 * time.Second

// Client exposes the factory and collection contract surface used by the
// generation worker
//
//go:generate mockgen -source=client.go -destination=../mocks/chain.go -package=mocks -mock_names=Client=MockChainClient
type Client interface {
	// AllCollections returns every collection registered with the factory
	AllCollections(ctx context.Context) ([]domain.Collection, error)

	// CollectionInfo returns the factory record for a collection id
	CollectionInfo(ctx context.Context, collectionID *big.Int) (*domain.Collection, error)

	// CollectionsByCreator returns the collection ids deployed by a creator
	CollectionsByCreator(ctx context.Context, creator common.Address) ([]*big.Int, error)

	// CollectionLineage returns a collection's ancestor chain, nearest parent first
	CollectionLineage(ctx context.Context, collection common.Address) ([]common.Address, error)

	// CurrentSupply returns the number of tokens minted in a collection
	CurrentSupply(ctx context.Context, collection common.Address) (*big.Int, error)

	// IsTokenGenerated reports whether a token's artwork URI has been written
	IsTokenGenerated(ctx context.Context, collection common.Address, tokenID *big.Int) (bool, error)

	// Prompt returns the collection's base generation prompt
	Prompt(ctx context.Context, collection common.Address) (string, error)

	// ReferenceImageURL returns the collection's reference image, empty if none
	ReferenceImageURL(ctx context.Context, collection common.Address) (string, error)

	// Parent returns the collection's parent address, zero if it is a root
	Parent(ctx context.Context, collection common.Address) (common.Address, error)

	// OwnerOf returns the current owner of a token
	OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error)

	// TokenURI returns the stored metadata URI of a token
	TokenURI(ctx context.Context, collection common.Address, tokenID *big.Int) (string, error)

	// UpdateTokenURI writes a token's metadata URI through the factory and
	// waits for the receipt. A revert maps to domain.ErrAlreadyGenerated
	UpdateTokenURI(ctx context.Context, collection common.Address, tokenID *big.Int, uri string) error

	// LatestBlock returns the latest block number
	LatestBlock(ctx context.Context) (uint64, error)

	// Close closes the underlying connection
	Close()
}

type client struct {
	eth            adapter.EthClient
	clock          adapter.Clock
	factory        common.Address
	key            *ecdsa.PrivateKey
	from           common.Address
	receiptTimeout time.Duration

	// sendMu serializes nonce acquisition and send for the signing account,
	// so concurrent writes cannot pick the same pending nonce
	sendMu sync.Mutex
}

// NewClient creates a chain client. The private key signs updateTokenURI
// transactions and must belong to the authorized generation worker account.
func NewClient(eth adapter.EthClient, clock adapter.Clock, factory common.Address, privateKeyHex string, receiptTimeout time.Duration) (Client, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &client{
		eth:            eth,
		clock:          clock,
		factory:        factory,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		receiptTimeout: receiptTimeout,
	}, nil
}

// call packs a contract call, executes it, and returns the raw result
func (c *client) call(ctx context.Context, contractABI abi.ABI, to common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{
		To:   &to,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}

	return result, nil
}

// AllCollections returns every collection registered with the factory
func (c *client) AllCollections(ctx context.Context) ([]domain.Collection, error) {
	result, err := c.call(ctx, contracts.FactoryABI, c.factory, "getAllCollections")
	if err != nil {
		return nil, err
	}

	out, err := contracts.FactoryABI.Unpack("getAllCollections", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getAllCollections: %w", err)
	}

	records := *abi.ConvertType(out[0], new([]contracts.CollectionInfo)).(*[]contracts.CollectionInfo)

	collections := make([]domain.Collection, 0, len(records))
	for _, r := range records {
		collections = append(collections, domain.Collection{
			ID:      r.CollectionId,
			Address: r.ContractAddress,
			Creator: r.Creator,
			Parent:  r.Parent,
			Name:    r.Name,
			Symbol:  r.Symbol,
		})
	}

	return collections, nil
}

// CollectionInfo returns the factory record for a collection id
func (c *client) CollectionInfo(ctx context.Context, collectionID *big.Int) (*domain.Collection, error) {
	result, err := c.call(ctx, contracts.FactoryABI, c.factory, "collectionInfo", collectionID)
	if err != nil {
		return nil, err
	}

	out, err := contracts.FactoryABI.Unpack("collectionInfo", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack collectionInfo: %w", err)
	}

	record := *abi.ConvertType(out[0], new(contracts.CollectionInfo)).(*contracts.CollectionInfo)
	if record.ContractAddress == (common.Address{}) {
		return nil, domain.ErrCollectionNotFound
	}

	return &domain.Collection{
		ID:      record.CollectionId,
		Address: record.ContractAddress,
		Creator: record.Creator,
		Parent:  record.Parent,
		Name:    record.Name,
		Symbol:  record.Symbol,
	}, nil
}

// CollectionsByCreator returns the collection ids deployed by a creator
func (c *client) CollectionsByCreator(ctx context.Context, creator common.Address) ([]*big.Int, error) {
	result, err := c.call(ctx, contracts.FactoryABI, c.factory, "getCollectionsByCreator", creator)
	if err != nil {
		return nil, err
	}

	var ids []*big.Int
	if err := contracts.FactoryABI.UnpackIntoInterface(&ids, "getCollectionsByCreator", result); err != nil {
		return nil, fmt.Errorf("failed to unpack getCollectionsByCreator: %w", err)
	}

	return ids, nil
}

// CollectionLineage returns a collection's ancestor chain, nearest parent first
func (c *client) CollectionLineage(ctx context.Context, collection common.Address) ([]common.Address, error) {
	result, err := c.call(ctx, contracts.FactoryABI, c.factory, "getCollectionLineage", collection)
	if err != nil {
		return nil, err
	}

	var lineage []common.Address
	if err := contracts.FactoryABI.UnpackIntoInterface(&lineage, "getCollectionLineage", result); err != nil {
		return nil, fmt.Errorf("failed to unpack getCollectionLineage: %w", err)
	}

	return lineage, nil
}

// CurrentSupply returns the number of tokens minted in a collection
func (c *client) CurrentSupply(ctx context.Context, collection common.Address) (*big.Int, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "getCurrentSupply")
	if err != nil {
		return nil, err
	}

	var supply *big.Int
	if err := contracts.CollectionABI.UnpackIntoInterface(&supply, "getCurrentSupply", result); err != nil {
		return nil, fmt.Errorf("failed to unpack getCurrentSupply: %w", err)
	}

	return supply, nil
}

// IsTokenGenerated reports whether a token's artwork URI has been written
func (c *client) IsTokenGenerated(ctx context.Context, collection common.Address, tokenID *big.Int) (bool, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "isTokenGenerated", tokenID)
	if err != nil {
		return false, err
	}

	var generated bool
	if err := contracts.CollectionABI.UnpackIntoInterface(&generated, "isTokenGenerated", result); err != nil {
		return false, fmt.Errorf("failed to unpack isTokenGenerated: %w", err)
	}

	return generated, nil
}

// Prompt returns the collection's base generation prompt
func (c *client) Prompt(ctx context.Context, collection common.Address) (string, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "getPrompt")
	if err != nil {
		return "", err
	}

	var prompt string
	if err := contracts.CollectionABI.UnpackIntoInterface(&prompt, "getPrompt", result); err != nil {
		return "", fmt.Errorf("failed to unpack getPrompt: %w", err)
	}

	return prompt, nil
}

// ReferenceImageURL returns the collection's reference image, empty if none
func (c *client) ReferenceImageURL(ctx context.Context, collection common.Address) (string, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "getReferenceImageUrl")
	if err != nil {
		return "", err
	}

	var url string
	if err := contracts.CollectionABI.UnpackIntoInterface(&url, "getReferenceImageUrl", result); err != nil {
		return "", fmt.Errorf("failed to unpack getReferenceImageUrl: %w", err)
	}

	return url, nil
}

// Parent returns the collection's parent address, zero if it is a root
func (c *client) Parent(ctx context.Context, collection common.Address) (common.Address, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "getParent")
	if err != nil {
		return common.Address{}, err
	}

	var parent common.Address
	if err := contracts.CollectionABI.UnpackIntoInterface(&parent, "getParent", result); err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack getParent: %w", err)
	}

	return parent, nil
}

// OwnerOf returns the current owner of a token
func (c *client) OwnerOf(ctx context.Context, collection common.Address, tokenID *big.Int) (common.Address, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "ownerOf", tokenID)
	if err != nil {
		return common.Address{}, err
	}

	var owner common.Address
	if err := contracts.CollectionABI.UnpackIntoInterface(&owner, "ownerOf", result); err != nil {
		return common.Address{}, fmt.Errorf("failed to unpack ownerOf: %w", err)
	}

	return owner, nil
}

// TokenURI returns the stored metadata URI of a token
func (c *client) TokenURI(ctx context.Context, collection common.Address, tokenID *big.Int) (string, error) {
	result, err := c.call(ctx, contracts.CollectionABI, collection, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}

	var uri string
	if err := contracts.CollectionABI.UnpackIntoInterface(&uri, "tokenURI", result); err != nil {
		return "", fmt.Errorf("failed to unpack tokenURI: %w", err)
	}

	return uri, nil
}

// UpdateTokenURI writes a token's metadata URI through the factory and waits
// for the receipt
func (c *client) UpdateTokenURI(ctx context.Context, collection common.Address, tokenID *big.Int, uri string) error {
	data, err := contracts.FactoryABI.Pack("updateTokenURI", collection, tokenID, uri)
	if err != nil {
		return fmt.Errorf("failed to pack updateTokenURI: %w", err)
	}

	// Estimating gas runs the call; a revert here means the contract refused
	// the write, which is how it signals an already-generated token
	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
		From: c.from,
		To:   &c.factory,
		Data: data,
	})
	if err != nil {
		if isRevert(err) {
			return fmt.Errorf("updateTokenURI rejected: %w", domain.ErrAlreadyGenerated)
		}
		return fmt.Errorf("failed to estimate gas: %w", err)
	}

	signed, err := c.signAndSend(ctx, data, gasLimit)
	if err != nil {
		return err
	}

	receipt, err := c.waitReceipt(ctx, signed.Hash())
	if err != nil {
		return err
	}

	if receipt.Status == types.ReceiptStatusFailed {
		return fmt.Errorf("updateTokenURI reverted in tx %s: %w", signed.Hash().Hex(), domain.ErrAlreadyGenerated)
	}

	return nil
}

// signAndSend builds, signs, and broadcasts a transaction, holding sendMu
// from nonce read to broadcast
func (c *client) signAndSend(ctx context.Context, data []byte, gasLimit uint64) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &c.factory,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed, nil
}

// waitReceipt polls for a transaction receipt until it lands or the
// configured timeout expires
func (c *client) waitReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	deadline := c.clock.Now().Add(c.receiptTimeout)

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if err == nil && receipt != nil {
			return receipt, nil
		}

		if c.clock.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for receipt of %s", txHash.Hex())
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(receiptPollInterval):
		}
	}
}

// LatestBlock returns the latest block number
func (c *client) LatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// Close closes the underlying connection
func (c *client) Close() {
	c.eth.Close()
}

func isRevert(err error) bool {
	return strings.Contains(err.Error(), "execution reverted")
}
