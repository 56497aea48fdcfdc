// Package listener watches the collection factory, drives artwork generation
// for every ungenerated token, and writes the resulting metadata URI back
// on-chain.
package listener

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/chain"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/generation"
	"github.com/imajus/ember-nft/internal/ipfs"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/metadata"
	"github.com/imajus/ember-nft/internal/prompt"
	"github.com/imajus/ember-nft/internal/ratelimit"
	"github.com/imajus/ember-nft/internal/uri"
)

const (
	DEFAULT_WORKER_POOL_SIZE  = 4
	DEFAULT_WORKER_QUEUE_SIZE = 256

	// usageStatsInterval is how often provider usage is logged in debug mode
	usageStatsInterval = time.Minute
)

// Config holds listener tunables
type Config struct {
	// MaxAttempts bounds generation retries per token
	MaxAttempts int
	// MintLookbackBlocks is how far back mint events are queried when a
	// collection watcher starts
	MintLookbackBlocks uint64
	// WorkerPoolSize bounds concurrent token generation
	WorkerPoolSize int
	// WorkerQueueSize bounds queued generation tasks
	WorkerQueueSize int
}

// Listener coordinates collection watchers and token generation
type Listener struct {
	config    Config
	chain     chain.Client
	sub       chain.Subscriber
	store     ipfs.Client
	generator generation.Generator
	composer  prompt.Composer
	limiter   ratelimit.Limiter
	registry  *Registry

	pool pond.Pool
	wg   sync.WaitGroup
}

// NewListener creates a listener. The registry is injected so callers can
// observe which collections are being watched.
func NewListener(
	cfg Config,
	chainClient chain.Client,
	sub chain.Subscriber,
	store ipfs.Client,
	generator generation.Generator,
	composer prompt.Composer,
	limiter ratelimit.Limiter,
	registry *Registry,
) *Listener {
	if cfg.WorkerPoolSize == 0 {
		cfg.WorkerPoolSize = DEFAULT_WORKER_POOL_SIZE
	}
	if cfg.WorkerQueueSize == 0 {
		cfg.WorkerQueueSize = DEFAULT_WORKER_QUEUE_SIZE
	}

	return &Listener{
		config:    cfg,
		chain:     chainClient,
		sub:       sub,
		store:     store,
		generator: generator,
		composer:  composer,
		limiter:   limiter,
		registry:  registry,
	}
}

// Run reconciles existing collections, then blocks delivering factory events
// until the context is cancelled
func (l *Listener) Run(ctx context.Context) error {
	l.pool = pond.NewPool(
		l.config.WorkerPoolSize,
		pond.WithQueueSize(l.config.WorkerQueueSize),
		pond.WithContext(ctx),
	)

	logger.InfoCtx(ctx, "Generation worker pool created",
		zap.Int("workers", l.config.WorkerPoolSize),
		zap.Int("queue_size", l.config.WorkerQueueSize))

	go l.logUsageStats(ctx)

	if err := l.Reconcile(ctx); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Listening for new collections")

	err := l.sub.SubscribeCollectionCreated(ctx, func(event domain.CollectionCreatedEvent) error {
		l.onCollectionCreated(ctx, event)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Reconcile loads every collection known to the factory and starts a watcher
// for each
func (l *Listener) Reconcile(ctx context.Context) error {
	collections, err := l.chain.AllCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}

	logger.InfoCtx(ctx, "Reconciling existing collections",
		zap.Int("count", len(collections)))

	for i := range collections {
		l.watch(ctx, collections[i])
	}

	return nil
}

// Close detaches every mint subscription, waits for catch-up scans and
// watcher goroutines to finish, and drains the worker pool. Tokens already
// being driven run to completion.
func (l *Listener) Close() {
	l.registry.Close()
	l.wg.Wait()
	if l.pool != nil {
		l.pool.StopAndWait()
	}
}

func (l *Listener) onCollectionCreated(ctx context.Context, event domain.CollectionCreatedEvent) {
	logger.InfoCtx(ctx, "Collection created",
		zap.String("collection", event.Address.Hex()),
		zap.String("creator", event.Creator.Hex()),
		zap.String("parent", event.Parent.Hex()))

	l.watch(ctx, domain.Collection{
		ID:      event.CollectionID,
		Address: event.Address,
		Creator: event.Creator,
		Parent:  event.Parent,
	})
}

// watch starts a collection watcher: catch-up scan over the existing supply,
// a lookback over recent mint events, then the live mint subscription.
// The registry cancel detaches only the subscription; the scan and the token
// pipelines run under the listener context so detaching never aborts work in
// flight.
func (l *Listener) watch(ctx context.Context, collection domain.Collection) {
	subCtx, cancel := context.WithCancel(ctx)
	if !l.registry.Add(collection.Address, cancel) {
		cancel()
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.registry.Remove(collection.Address)

		if err := l.catchUp(ctx, collection); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.ErrorCtx(ctx, err, zap.String("message", "Catch-up scan failed"),
				zap.String("collection", collection.Address.Hex()))
		}

		// The watcher may have been detached while the scan ran
		if subCtx.Err() != nil {
			return
		}

		err := l.sub.SubscribeTokenMinted(subCtx, collection.Address, func(event domain.TokenMintedEvent) error {
			l.onTokenMinted(ctx, collection, event)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Mint subscription ended"),
				zap.String("collection", collection.Address.Hex()))
		}
	}()
}

// catchUp walks the minted supply in token id order and drives every token
// that has no artwork yet, then sweeps recent mint events as a safety net
func (l *Listener) catchUp(ctx context.Context, collection domain.Collection) error {
	supply, err := l.chain.CurrentSupply(ctx, collection.Address)
	if err != nil {
		return fmt.Errorf("failed to read supply: %w", err)
	}

	logger.InfoCtx(ctx, "Scanning collection supply",
		zap.String("collection", collection.Address.Hex()),
		zap.String("supply", supply.String()))

	one := big.NewInt(1)
	for tokenID := new(big.Int).Set(one); tokenID.Cmp(supply) <= 0; tokenID = new(big.Int).Add(tokenID, one) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := l.Drive(ctx, collection, tokenID); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Token generation failed during scan"),
				zap.String("collection", collection.Address.Hex()),
				zap.String("tokenId", tokenID.String()))
		}
	}

	// Recent mints may postdate the supply read; sweep them too
	latest, err := l.chain.LatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("failed to read latest block: %w", err)
	}

	fromBlock := uint64(0)
	if latest > l.config.MintLookbackBlocks {
		fromBlock = latest - l.config.MintLookbackBlocks
	}

	events, err := l.sub.FilterMinted(ctx, collection.Address, fromBlock)
	if err != nil {
		return fmt.Errorf("failed to query recent mints: %w", err)
	}

	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := l.Drive(ctx, collection, event.TokenID); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Token generation failed for recent mint"),
				zap.String("collection", collection.Address.Hex()),
				zap.String("tokenId", event.TokenID.String()))
		}
	}

	return nil
}

func (l *Listener) onTokenMinted(ctx context.Context, collection domain.Collection, event domain.TokenMintedEvent) {
	logger.InfoCtx(ctx, "Token minted",
		zap.String("collection", collection.Address.Hex()),
		zap.String("tokenId", event.TokenID.String()),
		zap.String("minter", event.Minter.Hex()))

	tokenID := event.TokenID
	l.pool.Submit(func() {
		if err := l.Drive(ctx, collection, tokenID); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Token generation failed"),
				zap.String("collection", collection.Address.Hex()),
				zap.String("tokenId", tokenID.String()))
		}
	})
}

// Drive runs the full pipeline for one token: compose prompt, generate
// artwork, pin image and metadata, write the token URI on-chain. The
// on-chain generated flag is re-checked first so replays are no-ops.
func (l *Listener) Drive(ctx context.Context, collection domain.Collection, tokenID *big.Int) error {
	traceID := uuid.NewString()
	fields := []zap.Field{
		zap.String("traceId", traceID),
		zap.String("collection", collection.Address.Hex()),
		zap.String("tokenId", tokenID.String()),
	}

	generated, err := l.chain.IsTokenGenerated(ctx, collection.Address, tokenID)
	if err != nil {
		return fmt.Errorf("failed to check generated flag: %w", err)
	}
	if generated {
		logger.DebugCtx(ctx, "Token already generated, skipping", fields...)
		return nil
	}

	logger.InfoCtx(ctx, "Starting token generation", fields...)

	tokenPrompt, err := l.composer.Compose(ctx, &collection)
	if err != nil {
		return fmt.Errorf("failed to compose prompt: %w", err)
	}

	referenceRef, err := l.chain.ReferenceImageURL(ctx, collection.Address)
	if err != nil {
		return fmt.Errorf("failed to read reference image: %w", err)
	}
	referenceRef = uri.Normalize(referenceRef)

	result, err := l.generator.GenerateWithRetry(ctx, tokenPrompt, referenceRef, l.config.MaxAttempts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	meta := metadata.Build(&collection, tokenID, tokenPrompt, result)
	imageName := fmt.Sprintf("nft-%s-%s", collection.Address.Hex(), tokenID.String())

	metadataCID, err := l.store.UploadImageAndMetadata(ctx, result.Image, meta, imageName)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	tokenURI := uri.Scheme + metadataCID
	if err := l.chain.UpdateTokenURI(ctx, collection.Address, tokenID, tokenURI); err != nil {
		// Another writer got there first; the token is generated either way
		if errors.Is(err, domain.ErrAlreadyGenerated) {
			logger.InfoCtx(ctx, "Token URI already written", fields...)
			return nil
		}
		return fmt.Errorf("failed to write token URI: %w", err)
	}

	logger.InfoCtx(ctx, "Token generation complete",
		append(fields, zap.String("tokenURI", tokenURI))...)
	return nil
}

// logUsageStats periodically logs provider budget consumption in debug mode
func (l *Listener) logUsageStats(ctx context.Context) {
	ticker := time.NewTicker(usageStatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := l.limiter.UsageStats()
			logger.DebugCtx(ctx, "Provider usage",
				zap.Int("used", stats.Used),
				zap.Int("budget", stats.Budget),
				zap.Int("remaining", stats.Remaining),
				zap.Duration("resetsIn", stats.ResetsIn))
		}
	}
}

// Watched returns the addresses of currently watched collections
func (l *Listener) Watched() []common.Address {
	return l.registry.Addresses()
}
