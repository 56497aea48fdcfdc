// Package metadata builds the ERC-721 metadata document for a generated
// token.
package metadata

import (
	"fmt"
	"math/big"

	"github.com/imajus/ember-nft/internal/domain"
	"github.com/imajus/ember-nft/internal/generation"
)

// Build assembles the metadata document for a generated token. The image
// field is left empty and filled during the content store upload.
func Build(collection *domain.Collection, tokenID *big.Int, prompt string, result *generation.Result) *domain.TokenMetadata {
	attributes := []domain.MetadataAttribute{
		{TraitType: "Generation Method", Value: result.Method},
		{TraitType: "Model", Value: result.Model},
		{TraitType: "Token ID", Value: tokenID.String()},
	}

	if result.HasReferenceImage {
		attributes = append(attributes, domain.MetadataAttribute{
			TraitType: "Reference Image",
			Value:     result.ReferenceImageRef,
		})
		if result.StyleNotes != "" {
			attributes = append(attributes, domain.MetadataAttribute{
				TraitType: "Style Notes",
				Value:     result.StyleNotes,
			})
		}
	}

	return &domain.TokenMetadata{
		Name:          fmt.Sprintf("Token #%s", tokenID.String()),
		Description:   fmt.Sprintf("Generated NFT from collection %s", collection.Address.Hex()),
		Prompt:        prompt,
		RevisedPrompt: result.RevisedPrompt,
		Attributes:    attributes,
	}
}
