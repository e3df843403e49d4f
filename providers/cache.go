package providers

import (
	"context"
	"sync"
	"time"
)

// MaxCacheAge bounds how long a cached UTXO snapshot is trusted before a
// refetch is forced. There is no subscription to invalidate on, so age is
// the only freshness signal available.
const MaxCacheAge = 5 * time.Minute

type utxoCacheEntry struct {
	utxos     []AddressTxUTXO
	fetchedAt time.Time
}

// CachingUTXOProvider wraps a UTXOProvider with a per-address, age-bounded
// cache: a read-locked lookup, and on a miss a fetch followed by a
// write-locked store. The entry is not re-checked under the write lock, so
// concurrent misses for the same address each call the inner provider.
type CachingUTXOProvider struct {
	inner   UTXOProvider
	maxAge  time.Duration
	mu      sync.RWMutex
	entries map[string]utxoCacheEntry
}

// NewCachingUTXOProvider wraps inner with a cache of the given max age. A
// zero maxAge uses MaxCacheAge.
func NewCachingUTXOProvider(inner UTXOProvider, maxAge time.Duration) *CachingUTXOProvider {
	if maxAge <= 0 {
		maxAge = MaxCacheAge
	}
	return &CachingUTXOProvider{
		inner:   inner,
		maxAge:  maxAge,
		entries: make(map[string]utxoCacheEntry),
	}
}

func (c *CachingUTXOProvider) GetAddressUTXOs(ctx context.Context, addr string) ([]AddressTxUTXO, error) {
	c.mu.RLock()
	entry, ok := c.entries[addr]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.maxAge {
		return entry.utxos, nil
	}

	utxos, err := c.inner.GetAddressUTXOs(ctx, addr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[addr] = utxoCacheEntry{utxos: utxos, fetchedAt: time.Now()}
	c.mu.Unlock()
	return utxos, nil
}

// Invalidate drops the cached entry for addr, forcing the next call to
// refetch. Callers use this after broadcasting a transaction that spends
// or creates UTXOs at addr.
func (c *CachingUTXOProvider) Invalidate(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, addr)
}
