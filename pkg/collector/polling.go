package collector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/processing"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"go.uber.org/zap"
)

// DefaultPollInterval matches the spec's default polling cadence.
const DefaultPollInterval = 1000 * time.Millisecond

// PollingTask issues a parallel batch of pool reads every interval,
// one per monitored pool, grounded on the teacher's worker-pool-backed
// batch processing shape in pkg/processing.
type PollingTask struct {
	name     string
	venue    types.Venue
	pools    []types.PoolKey
	reader   processing.PoolReader
	parser   interfaces.PoolParser
	cache    interfaces.PoolCache
	pool     interfaces.WorkerPool
	interval time.Duration
	logger   *zap.Logger

	heartbeat atomic.Int64 // unix nanos
}

// NewPollingTask constructs a polling task for one venue's monitored
// pools. If interval is zero, DefaultPollInterval is used.
func NewPollingTask(venue types.Venue, pools []types.PoolKey, reader processing.PoolReader, parser interfaces.PoolParser, cache interfaces.PoolCache, workerPool interfaces.WorkerPool, interval time.Duration, logger *zap.Logger) *PollingTask {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := &PollingTask{
		name:     fmt.Sprintf("poll:%s", venue),
		venue:    venue,
		pools:    pools,
		reader:   reader,
		parser:   parser,
		cache:    cache,
		pool:     workerPool,
		interval: interval,
		logger:   logger,
	}
	t.heartbeat.Store(time.Now().UnixNano())
	return t
}

var _ interfaces.CollectorTask = (*PollingTask)(nil)

func (t *PollingTask) Name() string { return t.name }

func (t *PollingTask) LastHeartbeat() time.Time {
	return time.Unix(0, t.heartbeat.Load())
}

// Run issues one poll batch per tick until ctx is cancelled.
func (t *PollingTask) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.pollOnce(ctx)
			t.heartbeat.Store(time.Now().UnixNano())
		}
	}
}

func (t *PollingTask) pollOnce(ctx context.Context) {
	var wg sync.WaitGroup
	for _, key := range t.pools {
		job := &processing.PoolReadJob{
			Key:     key,
			Reader:  t.reader,
			Parser:  t.parser,
			Cache:   t.cache,
			Timeout: t.interval,
		}

		if t.pool == nil {
			wg.Add(1)
			go func(j *processing.PoolReadJob) {
				defer wg.Done()
				if _, err := j.Execute(ctx); err != nil && t.logger != nil {
					t.logger.Warn("pool read failed", zap.String("pool", j.Key.String()), zap.Error(err))
				}
			}(job)
			continue
		}

		if err := t.pool.Submit(job); err != nil && t.logger != nil {
			t.logger.Warn("failed to submit pool read job", zap.String("pool", key.String()), zap.Error(err))
		}
	}
	wg.Wait()
}
