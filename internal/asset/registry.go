package asset

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type tokenKey struct {
	chainID uint64
	address common.Address
}

// Registry is a thread-safe registry of known tokens.
type Registry struct {
	byKey    map[tokenKey]*Asset
	bySymbol map[string][]*Asset // upper-cased symbol -> assets (one per chain)
	mu       sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:    make(map[tokenKey]*Asset),
		bySymbol: make(map[string][]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if a token with the same chain and address is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := tokenKey{a.ChainID(), a.Address()}
	if _, exists := r.byKey[k]; exists {
		panic(fmt.Sprintf("asset: %s on chain %d already registered", a.Address().Hex(), a.ChainID()))
	}

	r.byKey[k] = a
	sym := strings.ToUpper(a.Symbol())
	r.bySymbol[sym] = append(r.bySymbol[sym], a)
}

// GetToken retrieves a token by chain and address.
func (r *Registry) GetToken(chainID uint64, address common.Address) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byKey[tokenKey{chainID, address}]
	return a, ok
}

// GetBySymbolAndChain retrieves a token by symbol (case-insensitive) and chain ID.
func (r *Registry) GetBySymbolAndChain(symbol string, chainID uint64) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.bySymbol[strings.ToUpper(symbol)] {
		if a.ChainID() == chainID {
			return a, true
		}
	}
	return nil, false
}

// ForChain returns every token registered on a chain, sorted by symbol.
func (r *Registry) ForChain(chainID uint64) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Asset
	for k, a := range r.byKey {
		if k.chainID == chainID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol() < out[j].Symbol() })
	return out
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byKey)
}
