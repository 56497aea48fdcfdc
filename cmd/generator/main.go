package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/adapter"
	"github.com/imajus/ember-nft/internal/chain"
	"github.com/imajus/ember-nft/internal/config"
	"github.com/imajus/ember-nft/internal/generation"
	"github.com/imajus/ember-nft/internal/ipfs"
	"github.com/imajus/ember-nft/internal/listener"
	"github.com/imajus/ember-nft/internal/logger"
	"github.com/imajus/ember-nft/internal/prompt"
	"github.com/imajus/ember-nft/internal/ratelimit"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadGeneratorConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "generator",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting NFT Generation Worker")

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	httpClient := adapter.NewHTTPClient(2 * time.Minute)
	fileSystem := adapter.NewFileSystem()
	imageProcessor := adapter.NewImageProcessor()
	openaiClient := adapter.NewOpenAIClient(cfg.OpenAI.APIKey)

	// Contract calls and writes go over the RPC transport; log subscriptions
	// need the websocket
	ethDialer := adapter.NewEthClientDialer()
	rpcClient, err := ethDialer.Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("rpc_url", cfg.Ethereum.RPCURL))
	}
	defer rpcClient.Close()

	wsClient, err := ethDialer.Dial(ctx, cfg.Ethereum.WebSocketURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum websocket", zap.Error(err), zap.String("websocket_url", cfg.Ethereum.WebSocketURL))
	}
	defer wsClient.Close()
	logger.InfoCtx(ctx, "Connected to Ethereum")

	factoryAddress := common.HexToAddress(cfg.Ethereum.FactoryAddress)

	// Initialize the chain client and subscriber
	chainClient, err := chain.NewClient(rpcClient, clockAdapter, factoryAddress, cfg.Ethereum.PrivateKey, cfg.Ethereum.ReceiptTimeout)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create chain client", zap.Error(err))
	}
	chainSubscriber := chain.NewSubscriber(wsClient, factoryAddress)

	// Initialize the content store
	contentStore := ipfs.NewClient(httpClient, jsonAdapter, ipfs.Config{
		BaseURL:    cfg.Pinata.BaseURL,
		JWT:        cfg.Pinata.JWT,
		GatewayURL: cfg.Pinata.GatewayURL,
	})

	// Initialize the generation pipeline
	limiter := ratelimit.NewWindow(cfg.OpenAI.RequestsPerMinute, clockAdapter)
	generator, err := generation.NewGenerator(cfg.OpenAI.Variant, generation.Deps{
		OpenAI:      openaiClient,
		HTTP:        httpClient,
		Store:       contentStore,
		Images:      imageProcessor,
		Files:       fileSystem,
		Limiter:     limiter,
		Clock:       clockAdapter,
		VisionModel: cfg.OpenAI.VisionModel,
		GatewayURL:  cfg.Pinata.GatewayURL,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create generator", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Generation pipeline ready",
		zap.String("model", generator.Name()),
		zap.Int("requests_per_minute", cfg.OpenAI.RequestsPerMinute))

	composer := prompt.NewComposer(chainClient)

	// Create the listener
	registry := listener.NewRegistry()
	eventListener := listener.NewListener(
		listener.Config{
			MaxAttempts:        cfg.OpenAI.MaxAttempts,
			MintLookbackBlocks: cfg.MintLookbackBlocks,
			WorkerPoolSize:     cfg.Worker.WorkerPoolSize,
			WorkerQueueSize:    cfg.Worker.WorkerQueueSize,
		},
		chainClient,
		chainSubscriber,
		contentStore,
		generator,
		composer,
		limiter,
		registry,
	)
	defer eventListener.Close()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel for listener errors
	errCh := make(chan error, 1)

	// Start the listener
	go func() {
		if err := eventListener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "listener"))
		cancel()
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("NFT Generation Worker stopped")
}
