// Package prompt composes the generation prompt for a token, folding in the
// prompts of the collection's ancestors for remixed collections.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/imajus/ember-nft/internal/chain"
	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/logger"
)

// separator joins lineage prompts, oldest ancestor first
const separator = " | "

// Composer builds the full generation prompt for a collection
//
//go:generate mockgen -source=composer.go -destination=../mocks/composer.go -package=mocks -mock_names=Composer=MockComposer
type Composer interface {
	// Compose returns the collection's prompt, prefixed by its ancestors'
	// prompts oldest-first when the collection is a remix
	Compose(ctx context.Context, collection *domain.Collection) (string, error)
}

type composer struct {
	chain chain.Client
}

// NewComposer creates a prompt composer backed by the chain client
func NewComposer(chainClient chain.Client) Composer {
	return &composer{chain: chainClient}
}

// Compose returns the collection's prompt, prefixed by its ancestors'
// prompts oldest-first when the collection is a remix
func (c *composer) Compose(ctx context.Context, collection *domain.Collection) (string, error) {
	own, err := c.chain.Prompt(ctx, collection.Address)
	if err != nil {
		return "", fmt.Errorf("failed to fetch collection prompt: %w", err)
	}

	if !collection.HasParent() {
		return own, nil
	}

	lineage, err := c.chain.CollectionLineage(ctx, collection.Address)
	if err != nil {
		// A remix without resolvable ancestry still generates from its own prompt
		logger.WarnCtx(ctx, "Could not fetch collection lineage, using own prompt only",
			zap.String("collection", collection.Address.Hex()),
			zap.Error(err))
		return own, nil
	}

	// Lineage comes nearest-parent-first; prompts read oldest ancestor first
	parts := make([]string, 0, len(lineage)+1)
	for i := len(lineage) - 1; i >= 0; i-- {
		ancestorPrompt, err := c.chain.Prompt(ctx, lineage[i])
		if err != nil {
			logger.WarnCtx(ctx, "Skipping ancestor with unreadable prompt",
				zap.String("ancestor", lineage[i].Hex()),
				zap.Error(err))
			continue
		}
		if strings.TrimSpace(ancestorPrompt) == "" {
			continue
		}
		parts = append(parts, ancestorPrompt)
	}

	parts = append(parts, own)
	return strings.Join(parts, separator), nil
}
