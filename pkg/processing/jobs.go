package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// PoolReader reads one pool's raw on-chain object; the job's Parser
// turns it into a PoolSnapshot. It is the external collaborator a
// PoolReadJob drives; the actual RPC call is out of scope here.
type PoolReader interface {
	ReadPool(ctx context.Context, key types.PoolKey) (raw []byte, err error)
}

// PoolReadJob reads and parses a single monitored pool, writing the
// result into a shared cache. One job is submitted per monitored pool
// on every polling tick, grounded on the teacher's per-transaction job
// shape in TransactionSimulationJob, retargeted from fork simulation to
// pool-state polling.
type PoolReadJob struct {
	Key     types.PoolKey
	Reader  PoolReader
	Parser  interfaces.PoolParser
	Cache   interfaces.PoolCache
	Timeout time.Duration
}

// Execute implements interfaces.Job.
func (j *PoolReadJob) Execute(ctx context.Context) (interface{}, error) {
	raw, err := j.Reader.ReadPool(ctx, j.Key)
	if err != nil {
		return nil, fmt.Errorf("processing: read pool %s: %w", j.Key, err)
	}

	snapshot, ok := j.Parser.Parse(raw, j.Key)
	if !ok {
		return nil, fmt.Errorf("processing: parse pool %s: malformed or out-of-range fields", j.Key)
	}

	j.Cache.Put(snapshot)
	return snapshot, nil
}

func (j *PoolReadJob) GetPriority() int { return 0 }

func (j *PoolReadJob) GetID() string { return "poll:" + j.Key.String() }

func (j *PoolReadJob) GetTimeout() time.Duration { return j.Timeout }
