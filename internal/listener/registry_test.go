package listener_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"

	"github.com/imajus/ember-nft/internal/listener"
)

func TestRegistryAddRejectsDuplicates(t *testing.T) {
	registry := listener.NewRegistry()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	_, cancel := context.WithCancel(context.Background())
	assert.True(t, registry.Add(addr, cancel))
	assert.False(t, registry.Add(addr, cancel))
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryRemoveCancelsWatcher(t *testing.T) {
	registry := listener.NewRegistry()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")

	ctx, cancel := context.WithCancel(context.Background())
	registry.Add(addr, cancel)
	registry.Remove(addr)

	assert.Error(t, ctx.Err())
	assert.Equal(t, 0, registry.Len())
	// Removing again is a no-op
	registry.Remove(addr)
}

func TestRegistryCloseCancelsAll(t *testing.T) {
	registry := listener.NewRegistry()
	addrA := common.HexToAddress("0x1111111111111111111111111111111111111111")
	addrB := common.HexToAddress("0x2222222222222222222222222222222222222222")

	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	registry.Add(addrA, cancelA)
	registry.Add(addrB, cancelB)

	assert.ElementsMatch(t, []common.Address{addrA, addrB}, registry.Addresses())

	registry.Close()
	assert.Error(t, ctxA.Err())
	assert.Error(t, ctxB.Err())
	assert.Equal(t, 0, registry.Len())
}
