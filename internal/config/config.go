package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/imajus/ember-nft/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// EthereumConfig holds Ethereum-specific configuration
type EthereumConfig struct {
	WebSocketURL   string        `mapstructure:"websocket_url"`
	RPCURL         string        `mapstructure:"rpc_url"`
	FactoryAddress string        `mapstructure:"factory_address"`
	PrivateKey     string        `mapstructure:"private_key"`
	ReceiptTimeout time.Duration `mapstructure:"receipt_timeout"`
}

// PinataConfig holds Pinata pinning service configuration
type PinataConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	JWT        string `mapstructure:"jwt"`
	GatewayURL string `mapstructure:"gateway_url"`
}

// OpenAIConfig holds image generation configuration
type OpenAIConfig struct {
	APIKey            string                   `mapstructure:"api_key"`
	Variant           domain.GenerationVariant `mapstructure:"variant"`
	VisionModel       string                   `mapstructure:"vision_model"`
	MaxAttempts       int                      `mapstructure:"max_attempts"`
	RequestsPerMinute int                      `mapstructure:"requests_per_minute"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// GeneratorConfig holds configuration for the generation worker
type GeneratorConfig struct {
	BaseConfig         `mapstructure:",squash"`
	Worker             WorkerConfig   `mapstructure:"worker"`
	Ethereum           EthereumConfig `mapstructure:"ethereum"`
	Pinata             PinataConfig   `mapstructure:"pinata"`
	OpenAI             OpenAIConfig   `mapstructure:"openai"`
	MintLookbackBlocks uint64         `mapstructure:"mint_lookback_blocks"`
}

// LoadGeneratorConfig loads configuration for the generation worker
func LoadGeneratorConfig(configFile string, envPath string) (*GeneratorConfig, error) {
	v := configureViper("generator", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("ethereum.receipt_timeout", "2m")
	v.SetDefault("pinata.base_url", "https://api.pinata.cloud")
	v.SetDefault("pinata.gateway_url", domain.DEFAULT_IPFS_GATEWAY)
	v.SetDefault("openai.variant", string(domain.VariantDallE3))
	v.SetDefault("openai.vision_model", "gpt-4o")
	v.SetDefault("openai.max_attempts", 3)
	v.SetDefault("worker.pool_size", 4)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("mint_lookback_blocks", 1000)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg GeneratorConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply the variant's rate limit unless one was set explicitly
	if cfg.OpenAI.RequestsPerMinute == 0 {
		cfg.OpenAI.RequestsPerMinute = cfg.OpenAI.Variant.RequestsPerMinute()
	}

	// Validate required fields
	if cfg.Ethereum.WebSocketURL == "" {
		return nil, errors.New("ethereum.websocket_url is required")
	}
	if cfg.Ethereum.RPCURL == "" {
		return nil, errors.New("ethereum.rpc_url is required")
	}
	if cfg.Ethereum.FactoryAddress == "" {
		return nil, errors.New("ethereum.factory_address is required")
	}
	if cfg.Ethereum.PrivateKey == "" {
		return nil, errors.New("ethereum.private_key is required")
	}
	if cfg.Pinata.JWT == "" {
		return nil, errors.New("pinata.jwt is required")
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, errors.New("openai.api_key is required")
	}
	if !cfg.OpenAI.Variant.Valid() {
		return nil, fmt.Errorf("openai.variant %q is not supported", cfg.OpenAI.Variant)
	}

	return &cfg, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/generator/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("EMBER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.rpc_url",
		"ethereum.factory_address",
		"ethereum.private_key",
		"ethereum.receipt_timeout",
		// Pinata
		"pinata.base_url",
		"pinata.jwt",
		"pinata.gateway_url",
		// OpenAI
		"openai.api_key",
		"openai.variant",
		"openai.vision_model",
		"openai.max_attempts",
		"openai.requests_per_minute",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Generator specific
		"mint_lookback_blocks",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}
