package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/adapter"
	"github.com/imajus/ember-nft/internal/contracts"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
)

// CollectionCreatedHandler handles a factory CollectionCreated event
type CollectionCreatedHandler func(event domain.CollectionCreatedEvent) error

// TokenMintedHandler handles a collection TokenMinted event
type TokenMintedHandler func(event domain.TokenMintedEvent) error

// Subscriber provides live and historical access to factory and collection
// events
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeCollectionCreated blocks, delivering CollectionCreated events
	// to the handler until the context is cancelled
	SubscribeCollectionCreated(ctx context.Context, handler CollectionCreatedHandler) error

	// SubscribeTokenMinted blocks, delivering TokenMinted events from one
	// collection to the handler until the context is cancelled
	SubscribeTokenMinted(ctx context.Context, collection common.Address, handler TokenMintedHandler) error

	// FilterMinted returns historical TokenMinted events for a collection
	// from the given block onward
	FilterMinted(ctx context.Context, collection common.Address, fromBlock uint64) ([]domain.TokenMintedEvent, error)
}

type subscriber struct {
	eth     adapter.EthClient
	factory common.Address
}

// NewSubscriber creates an event subscriber for the given factory
func NewSubscriber(eth adapter.EthClient, factory common.Address) Subscriber {
	return &subscriber{eth: eth, factory: factory}
}

// SubscribeCollectionCreated blocks, delivering CollectionCreated events to
// the handler until the context is cancelled
func (s *subscriber) SubscribeCollectionCreated(ctx context.Context, handler CollectionCreatedHandler) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{s.factory},
		Topics:    [][]common.Hash{{contracts.CollectionCreatedEventSignature}},
	}

	logs := make(chan types.Log)
	sub, err := s.eth.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			event, err := parseCollectionCreated(vLog)
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error parsing CollectionCreated log"))
				continue
			}

			if err := handler(*event); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error handling CollectionCreated event"))
			}
		}
	}
}

// SubscribeTokenMinted blocks, delivering TokenMinted events from one
// collection to the handler until the context is cancelled
func (s *subscriber) SubscribeTokenMinted(ctx context.Context, collection common.Address, handler TokenMintedHandler) error {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{collection},
		Topics:    [][]common.Hash{{contracts.TokenMintedEventSignature}},
	}

	logs := make(chan types.Log)
	sub, err := s.eth.SubscribeFilterLogs(ctx, query, logs)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSubscriptionFailed, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			event, err := parseTokenMinted(vLog)
			if err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error parsing TokenMinted log"))
				continue
			}

			if err := handler(*event); err != nil {
				logger.ErrorCtx(ctx, err, zap.String("message", "Error handling TokenMinted event"))
			}
		}
	}
}

// FilterMinted returns historical TokenMinted events for a collection from
// the given block onward
func (s *subscriber) FilterMinted(ctx context.Context, collection common.Address, fromBlock uint64) ([]domain.TokenMintedEvent, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		Addresses: []common.Address{collection},
		Topics:    [][]common.Hash{{contracts.TokenMintedEventSignature}},
	}

	logs, err := s.eth.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter logs: %w", err)
	}

	events := make([]domain.TokenMintedEvent, 0, len(logs))
	for _, vLog := range logs {
		event, err := parseTokenMinted(vLog)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping unparseable TokenMinted log",
				zap.String("txHash", vLog.TxHash.Hex()),
				zap.Error(err))
			continue
		}
		events = append(events, *event)
	}

	return events, nil
}

func parseCollectionCreated(vLog types.Log) (*domain.CollectionCreatedEvent, error) {
	if len(vLog.Topics) != 4 {
		return nil, fmt.Errorf("unexpected topic count %d for CollectionCreated", len(vLog.Topics))
	}
	if len(vLog.Data) < 32 {
		return nil, fmt.Errorf("short data for CollectionCreated: %d bytes", len(vLog.Data))
	}

	return &domain.CollectionCreatedEvent{
		CollectionID: new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
		Address:      common.BytesToAddress(vLog.Topics[2].Bytes()),
		Creator:      common.BytesToAddress(vLog.Topics[3].Bytes()),
		Parent:       common.BytesToAddress(vLog.Data[12:32]),
		BlockNumber:  vLog.BlockNumber,
	}, nil
}

func parseTokenMinted(vLog types.Log) (*domain.TokenMintedEvent, error) {
	if len(vLog.Topics) != 3 {
		return nil, fmt.Errorf("unexpected topic count %d for TokenMinted", len(vLog.Topics))
	}
	if len(vLog.Data) < 32 {
		return nil, fmt.Errorf("short data for TokenMinted: %d bytes", len(vLog.Data))
	}

	return &domain.TokenMintedEvent{
		Collection:  vLog.Address,
		TokenID:     new(big.Int).SetBytes(vLog.Topics[1].Bytes()),
		Minter:      common.BytesToAddress(vLog.Topics[2].Bytes()),
		Timestamp:   new(big.Int).SetBytes(vLog.Data[:32]),
		BlockNumber: vLog.BlockNumber,
	}, nil
}
