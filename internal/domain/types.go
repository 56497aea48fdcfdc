package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// GenerationVariant selects which image generation pipeline a collection uses
type GenerationVariant string

const (
	VariantDallE2 GenerationVariant = "dall-e-2"
	VariantDallE3 GenerationVariant = "dall-e-3"
)

// Valid checks if a generation variant is supported
func (v GenerationVariant) Valid() bool {
	return v == VariantDallE2 || v == VariantDallE3
}

// RequestsPerMinute returns the API rate limit for the variant
func (v GenerationVariant) RequestsPerMinute() int {
	switch v {
	case VariantDallE2:
		return 50
	default:
		return 20
	}
}

// Collection represents a deployed NFT collection tracked by the worker.
// Prompt, reference image, and supply are read from the contract on demand
// rather than cached here.
type Collection struct {
	ID      *big.Int
	Address common.Address
	Creator common.Address
	Parent  common.Address
	Name    string
	Symbol  string
}

// HasParent reports whether the collection was remixed from another collection
func (c *Collection) HasParent() bool {
	return c.Parent != (common.Address{})
}

// CollectionCreatedEvent represents a CollectionCreated log emitted by the factory
type CollectionCreatedEvent struct {
	CollectionID *big.Int
	Address      common.Address
	Creator      common.Address
	Parent       common.Address
	BlockNumber  uint64
}

// TokenMintedEvent represents a TokenMinted log emitted by a collection contract
type TokenMintedEvent struct {
	Collection  common.Address
	TokenID     *big.Int
	Minter      common.Address
	Timestamp   *big.Int
	BlockNumber uint64
}

// TokenMetadata is the ERC-721 metadata document pinned for a generated token
type TokenMetadata struct {
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Image         string              `json:"image"`
	Prompt        string              `json:"prompt"`
	RevisedPrompt string              `json:"revised_prompt,omitempty"`
	Attributes    []MetadataAttribute `json:"attributes"`
}

// MetadataAttribute is a single trait entry in token metadata
type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}
