package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/builder"
	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	snaps []*types.PoolSnapshot
}

func (f *fakeCache) Put(s *types.PoolSnapshot)                      {}
func (f *fakeCache) Get(k types.PoolKey) (*types.PoolSnapshot, bool) { return nil, false }
func (f *fakeCache) Snapshot() []*types.PoolSnapshot                 { return f.snaps }

type fakeScanner struct {
	two []*types.Opportunity
	tri []*types.Opportunity
}

func (f *fakeScanner) ScanTwoHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity {
	return f.two
}
func (f *fakeScanner) ScanTriHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity {
	return f.tri
}

type fakeQueue struct {
	mu    sync.Mutex
	items []*types.Opportunity
}

func (q *fakeQueue) Push(o *types.Opportunity) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, o)
	return nil
}
func (q *fakeQueue) Pop() (*types.Opportunity, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, assertEmptyErr
	}
	best := q.items[0]
	q.items = q.items[1:]
	return best, nil
}
func (q *fakeQueue) Peek() (*types.Opportunity, error) { return nil, assertEmptyErr }
func (q *fakeQueue) Size() int                          { q.mu.Lock(); defer q.mu.Unlock(); return len(q.items) }
func (q *fakeQueue) Clear()                             { q.mu.Lock(); defer q.mu.Unlock(); q.items = nil }

var assertEmptyErr = errQueueEmpty{}

type errQueueEmpty struct{}

func (errQueueEmpty) Error() string { return "queue empty" }

type fakeOptimizer struct {
	called bool
}

func (f *fakeOptimizer) Optimize(ctx context.Context, opp *types.Opportunity, snapshots map[types.PoolKey]*types.PoolSnapshot, gas *big.Int) (*types.Opportunity, bool, error) {
	f.called = true
	refined := *opp
	refined.EstimatedProfit = big.NewInt(50)
	return &refined, true, nil
}

type fakeBuilder struct {
	called bool
}

func (f *fakeBuilder) Build(ctx context.Context, opp *types.Opportunity, minProfit *big.Int) (*types.CandidateTransaction, error) {
	f.called = true
	return &types.CandidateTransaction{Tag: opp.Tag, AmountIn: opp.AmountIn, MinProfit: minProfit}, nil
}

type fakeSubmitter struct {
	called  bool
	outcome *types.SubmissionOutcome
	err     error
}

func (f *fakeSubmitter) Submit(ctx context.Context, tx *types.CandidateTransaction) (*types.SubmissionOutcome, error) {
	f.called = true
	return f.outcome, f.err
}

type fakeBreaker struct {
	allow           bool
	successRecorded bool
	failureRecorded bool
}

func (f *fakeBreaker) State() interfaces.BreakerState        { return interfaces.BreakerClosed }
func (f *fakeBreaker) AllowSubmission(now time.Time) bool    { return f.allow }
func (f *fakeBreaker) RecordSuccess(now time.Time)           { f.successRecorded = true }
func (f *fakeBreaker) RecordFailure(now time.Time, l *big.Int) { f.failureRecorded = true }

type fakeGasMonitor struct{ above bool }

func (f *fakeGasMonitor) Balance() *big.Int            { return big.NewInt(0) }
func (f *fakeGasMonitor) AboveMinimum() bool           { return f.above }
func (f *fakeGasMonitor) Refresh(now time.Time, b *big.Int) {}

func sampleSnapshot() *types.PoolSnapshot {
	return &types.PoolSnapshot{
		Key:        types.PoolKey{Venue: types.VenueCLMMA, Pool: "p1", Base: "A", Quote: "B"},
		Kind:       types.PriceKindSqrtX64,
		CapturedAt: time.Now(),
	}
}

func sampleOpportunity() *types.Opportunity {
	return &types.Opportunity{
		Tag:                "arb_clmm_a_to_clmm_b",
		Legs:               []types.Leg{{Venue: types.VenueCLMMA, Pool: "p1"}, {Venue: types.VenueCLMMB, Pool: "p2"}},
		InputAsset:         "A",
		AmountIn:           big.NewInt(100),
		EstimatedAmountOut: big.NewInt(150),
		EstimatedProfit:    big.NewInt(50),
		DiscoveredAt:       time.Now(),
	}
}

func TestTick_SubmitsWhenGatesOpenAndOpportunityFound(t *testing.T) {
	cache := &fakeCache{snaps: []*types.PoolSnapshot{sampleSnapshot()}}
	scanner := &fakeScanner{two: []*types.Opportunity{sampleOpportunity()}}
	queue := &fakeQueue{}
	opt := &fakeOptimizer{}
	b := &fakeBuilder{}
	sub := &fakeSubmitter{outcome: &types.SubmissionOutcome{Success: true, GasCost: big.NewInt(1)}}
	breaker := &fakeBreaker{allow: true}
	gm := &fakeGasMonitor{above: true}

	o := New(Config{TickInterval: time.Hour, DryRunBeforeSubmit: false, EstimatedGas: big.NewInt(0)},
		cache, types.DecimalsMap{"A": 9, "B": 9}, scanner, queue, opt, b, (*builder.Validator)(nil), sub, breaker, gm, nil)

	o.tick(context.Background(), time.Now())

	assert.True(t, opt.called)
	assert.True(t, b.called)
	assert.True(t, sub.called)
	assert.True(t, breaker.successRecorded)
}

func TestTick_SkipsWhenBreakerOpen(t *testing.T) {
	cache := &fakeCache{snaps: []*types.PoolSnapshot{sampleSnapshot()}}
	scanner := &fakeScanner{two: []*types.Opportunity{sampleOpportunity()}}
	queue := &fakeQueue{}
	opt := &fakeOptimizer{}
	b := &fakeBuilder{}
	sub := &fakeSubmitter{}
	breaker := &fakeBreaker{allow: false}
	gm := &fakeGasMonitor{above: true}

	o := New(Config{TickInterval: time.Hour}, cache, types.DecimalsMap{}, scanner, queue, opt, b, nil, sub, breaker, gm, nil)
	o.tick(context.Background(), time.Now())

	assert.False(t, opt.called)
	assert.False(t, sub.called)
}

func TestTick_SkipsWhenGasBelowMinimum(t *testing.T) {
	cache := &fakeCache{snaps: []*types.PoolSnapshot{sampleSnapshot()}}
	scanner := &fakeScanner{two: []*types.Opportunity{sampleOpportunity()}}
	queue := &fakeQueue{}
	opt := &fakeOptimizer{}
	b := &fakeBuilder{}
	sub := &fakeSubmitter{}
	breaker := &fakeBreaker{allow: true}
	gm := &fakeGasMonitor{above: false}

	o := New(Config{TickInterval: time.Hour}, cache, types.DecimalsMap{}, scanner, queue, opt, b, nil, sub, breaker, gm, nil)
	o.tick(context.Background(), time.Now())

	assert.False(t, opt.called)
	assert.False(t, sub.called)
}

func TestTick_SkipsOnStaleCache(t *testing.T) {
	stale := sampleSnapshot()
	stale.CapturedAt = time.Now().Add(-types.StaleAfter - time.Second)
	cache := &fakeCache{snaps: []*types.PoolSnapshot{stale}}
	scanner := &fakeScanner{}
	queue := &fakeQueue{}
	opt := &fakeOptimizer{}
	b := &fakeBuilder{}
	sub := &fakeSubmitter{}
	breaker := &fakeBreaker{allow: true}
	gm := &fakeGasMonitor{above: true}

	o := New(Config{TickInterval: time.Hour}, cache, types.DecimalsMap{}, scanner, queue, opt, b, nil, sub, breaker, gm, nil)
	o.tick(context.Background(), time.Now())

	assert.False(t, opt.called)
}

func TestBuildMinProfit_Is90PercentWithFloorOfOne(t *testing.T) {
	assert.Equal(t, big.NewInt(90), buildMinProfit(big.NewInt(100)))
	assert.Equal(t, big.NewInt(1), buildMinProfit(big.NewInt(1)))
	assert.Equal(t, big.NewInt(1), buildMinProfit(big.NewInt(0)))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cache := &fakeCache{}
	o := New(Config{TickInterval: 10 * time.Millisecond}, cache, types.DecimalsMap{}, &fakeScanner{}, &fakeQueue{}, &fakeOptimizer{}, &fakeBuilder{}, nil, &fakeSubmitter{}, &fakeBreaker{allow: true}, &fakeGasMonitor{above: true}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := o.Run(ctx)
	require.NoError(t, err)
}
