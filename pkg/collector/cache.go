// Package collector ingests pool state via polling and event streaming
// into a shared cache, and supervises both collection modes
// independently so a failure in one never stops the other.
package collector

import (
	"sync"
	"sync/atomic"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Cache is the shared pool-state store: a sharded map with a per-key
// atomic pointer swap of an immutable snapshot, so readers never
// observe a partially written snapshot and writers never block each
// other across distinct pools.
type Cache struct {
	entries sync.Map // types.PoolKey -> *atomic.Pointer[types.PoolSnapshot]
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

var _ interfaces.PoolCache = (*Cache)(nil)

// Put writes a snapshot, but only if it is strictly newer than whatever
// is already cached for that pool.
func (c *Cache) Put(snapshot *types.PoolSnapshot) {
	if snapshot == nil {
		return
	}
	slot := c.slotFor(snapshot.Key)
	for {
		current := slot.Load()
		if current != nil && !snapshot.CapturedAt.After(current.CapturedAt) {
			return
		}
		if slot.CompareAndSwap(current, snapshot) {
			return
		}
	}
}

// Get returns the latest snapshot for a pool key, if any.
func (c *Cache) Get(key types.PoolKey) (*types.PoolSnapshot, bool) {
	slot := c.slotFor(key)
	snapshot := slot.Load()
	if snapshot == nil {
		return nil, false
	}
	return snapshot, true
}

// Snapshot returns every cached snapshot as of now. The result is not
// coherent across pools, which scanning tolerates within the staleness
// window.
func (c *Cache) Snapshot() []*types.PoolSnapshot {
	var out []*types.PoolSnapshot
	c.entries.Range(func(_, value interface{}) bool {
		slot := value.(*atomic.Pointer[types.PoolSnapshot])
		if snapshot := slot.Load(); snapshot != nil {
			out = append(out, snapshot)
		}
		return true
	})
	return out
}

func (c *Cache) slotFor(key types.PoolKey) *atomic.Pointer[types.PoolSnapshot] {
	slot := &atomic.Pointer[types.PoolSnapshot]{}
	actual, _ := c.entries.LoadOrStore(key, slot)
	return actual.(*atomic.Pointer[types.PoolSnapshot])
}
