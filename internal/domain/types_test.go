package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestGenerationVariantValid(t *testing.T) {
	assert.True(t, VariantDallE2.Valid())
	assert.True(t, VariantDallE3.Valid())
	assert.False(t, GenerationVariant("dall-e-4").Valid())
	assert.False(t, GenerationVariant("").Valid())
}

func TestGenerationVariantRequestsPerMinute(t *testing.T) {
	assert.Equal(t, 50, VariantDallE2.RequestsPerMinute())
	assert.Equal(t, 20, VariantDallE3.RequestsPerMinute())
}

func TestCollectionHasParent(t *testing.T) {
	root := Collection{
		Address: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Parent:  common.HexToAddress(ETHEREUM_ZERO_ADDRESS),
	}
	assert.False(t, root.HasParent())

	remix := Collection{
		Address: common.HexToAddress("0x2222222222222222222222222222222222222222"),
		Parent:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
	}
	assert.True(t, remix.HasParent())
}
