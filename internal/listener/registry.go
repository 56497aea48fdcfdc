package listener

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry tracks which collections have an active watcher and owns each
// watcher's cancel function
type Registry struct {
	mu       sync.Mutex
	watchers map[common.Address]context.CancelFunc
}

// NewRegistry creates an empty watcher registry
func NewRegistry() *Registry {
	return &Registry{
		watchers: make(map[common.Address]context.CancelFunc),
	}
}

// Add registers a watcher for a collection. It returns false if the
// collection is already watched, leaving the existing watcher in place.
func (r *Registry) Add(collection common.Address, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watchers[collection]; exists {
		return false
	}

	r.watchers[collection] = cancel
	return true
}

// Remove cancels and forgets a collection's watcher
func (r *Registry) Remove(collection common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, exists := r.watchers[collection]; exists {
		cancel()
		delete(r.watchers, collection)
	}
}

// Addresses returns the currently watched collection addresses
func (r *Registry) Addresses() []common.Address {
	r.mu.Lock()
	defer r.mu.Unlock()

	addresses := make([]common.Address, 0, len(r.watchers))
	for addr := range r.watchers {
		addresses = append(addresses, addr)
	}
	return addresses
}

// Len returns the number of watched collections
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

// Close cancels every watcher and empties the registry
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for addr, cancel := range r.watchers {
		cancel()
		delete(r.watchers, addr)
	}
}
