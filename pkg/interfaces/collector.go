package interfaces

import (
	"context"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// PoolCache is the shared, concurrently-written pool-state store.
// Writers may only overwrite with a strictly newer timestamp; readers
// observe a consistent point-in-time snapshot per pool (not necessarily
// coherent across pools).
type PoolCache interface {
	Put(snapshot *types.PoolSnapshot)
	Get(key types.PoolKey) (*types.PoolSnapshot, bool)
	Snapshot() []*types.PoolSnapshot
}

// CollectorTask is one independently-supervised collection task: one
// per venue x mode (polling or event-stream).
type CollectorTask interface {
	Name() string
	Run(ctx context.Context) error
	LastHeartbeat() time.Time
}

// PoolParser extracts a PoolSnapshot from a raw, venue-specific object
// read. It must tolerate missing, null, and out-of-range fields by
// returning ok=false rather than an error.
type PoolParser interface {
	Parse(raw []byte, key types.PoolKey) (snapshot *types.PoolSnapshot, ok bool)
}
