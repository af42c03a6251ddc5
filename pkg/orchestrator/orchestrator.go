// Package orchestrator runs the fixed-interval tick loop that drives
// the rest of the pipeline: scan the pool cache, rank candidates,
// refine the best one, build and dry-run its transaction, and submit
// it, gated on cache freshness, wallet balance, and circuit-breaker
// state. Grounded on the teacher's internal/app.Application.Start
// background-ticker shape (internal/app/app.go's simulateActivity
// loop), replacing its simulated metrics increments with the real
// collector -> scanner -> queue -> optimizer -> builder -> submitter
// pipeline.
package orchestrator

import (
	"context"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/builder"
	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"go.uber.org/zap"
)

// DefaultTickInterval matches the spec's default orchestrator poll
// interval (POLL_INTERVAL_MS default of 500ms).
const DefaultTickInterval = 500 * time.Millisecond

// CacheStaleAfter bounds how old the newest snapshot in the cache may
// be before the orchestrator refuses to act on it this tick.
const CacheStaleAfter = 10 * time.Second

// Config holds the orchestrator's tunable knobs.
type Config struct {
	TickInterval       time.Duration
	DryRunBeforeSubmit bool
	EstimatedGas       *big.Int

	// MinProfit is the MIN_PROFIT configuration floor: an opportunity
	// whose optimizer-refined expected profit falls below this, in the
	// input asset's smallest unit, is dropped before a transaction is
	// ever built.
	MinProfit *big.Int
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       DefaultTickInterval,
		DryRunBeforeSubmit: true,
		EstimatedGas:       big.NewInt(200_000),
		MinProfit:          big.NewInt(1),
	}
}

// Orchestrator wires the collector cache through to submission on a
// fixed tick, applying the staleness, balance, and breaker gates before
// ever building a transaction.
type Orchestrator struct {
	cfg Config

	cache      interfaces.PoolCache
	decimals   types.DecimalsMap
	scanner    interfaces.Scanner
	queue      interfaces.OpportunityQueue
	optimizer  interfaces.Optimizer
	txBuilder  interfaces.Builder
	validator  *builder.Validator
	submitter  interfaces.Submitter
	breaker    interfaces.CircuitBreaker
	gasMonitor interfaces.GasMonitor

	logger *zap.Logger
}

// New assembles an Orchestrator from its pipeline collaborators.
// validator may be nil when cfg.DryRunBeforeSubmit is false.
func New(
	cfg Config,
	cache interfaces.PoolCache,
	decimals types.DecimalsMap,
	scanner interfaces.Scanner,
	queue interfaces.OpportunityQueue,
	optimizer interfaces.Optimizer,
	txBuilder interfaces.Builder,
	validator *builder.Validator,
	submitter interfaces.Submitter,
	breaker interfaces.CircuitBreaker,
	gasMonitor interfaces.GasMonitor,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		cache:      cache,
		decimals:   decimals,
		scanner:    scanner,
		queue:      queue,
		optimizer:  optimizer,
		txBuilder:  txBuilder,
		validator:  validator,
		submitter:  submitter,
		breaker:    breaker,
		gasMonitor: gasMonitor,
		logger:     logger,
	}
}

// Run ticks until ctx is cancelled, never returning an error on a
// per-tick failure: every failure mode inside a tick is logged and
// deferred to the next tick rather than stopping the loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	interval := o.cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			o.tick(ctx, now)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context, now time.Time) {
	if !o.gatesOpen(now) {
		return
	}

	snapshots := o.cache.Snapshot()
	if !o.freshEnough(snapshots, now) {
		return
	}

	// Tri-hop cycles are fully detected and ranked by the scanner, but
	// only two-hop opportunities are dispatched to the builder: a
	// three-leg route holds a flash-borrowed asset across two
	// intermediate swaps, doubling exposure to slippage between dry-run
	// and submission for a thinner historical profit margin. Logged for
	// visibility, never enqueued.
	two := o.scanner.ScanTwoHop(snapshots, o.decimals, now)
	tri := o.scanner.ScanTriHop(snapshots, o.decimals, now)
	if len(tri) > 0 && o.logger != nil {
		o.logger.Debug("tri-hop opportunities detected but not dispatched", zap.Int("count", len(tri)))
	}
	for _, opp := range two {
		if err := o.queue.Push(opp); err != nil && o.logger != nil {
			o.logger.Warn("queue push failed", zap.Error(err))
		}
	}

	opp, err := o.queue.Pop()
	if err != nil {
		return // empty queue this tick
	}
	if opp.IsExpired(now) {
		return
	}

	o.processOpportunity(ctx, opp, snapshots, now)
}

func (o *Orchestrator) gatesOpen(now time.Time) bool {
	if o.breaker != nil && !o.breaker.AllowSubmission(now) {
		return false
	}
	if o.gasMonitor != nil && !o.gasMonitor.AboveMinimum() {
		return false
	}
	return true
}

func (o *Orchestrator) freshEnough(snapshots []*types.PoolSnapshot, now time.Time) bool {
	if len(snapshots) == 0 {
		return false
	}
	for _, s := range snapshots {
		if !s.IsStale(now) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) processOpportunity(ctx context.Context, opp *types.Opportunity, snapshots []*types.PoolSnapshot, now time.Time) {
	byKey := make(map[types.PoolKey]*types.PoolSnapshot, len(snapshots))
	for _, s := range snapshots {
		byKey[s.Key] = s
	}

	refined, ok, err := o.optimizer.Optimize(ctx, opp, byKey, o.cfg.EstimatedGas)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("optimize failed", zap.String("tag", string(opp.Tag)), zap.Error(err))
		}
		return
	}
	if !ok {
		return
	}
	if o.cfg.MinProfit != nil && refined.EstimatedProfit.Cmp(o.cfg.MinProfit) < 0 {
		return
	}

	tx, err := o.txBuilder.Build(ctx, refined, buildMinProfit(refined.EstimatedProfit))
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("build failed", zap.String("tag", string(refined.Tag)), zap.Error(err))
		}
		return
	}

	if o.cfg.DryRunBeforeSubmit && o.validator != nil {
		rebuilt, _, ok, err := o.validator.ValidateAndTighten(ctx, refined, tx)
		if err != nil {
			if o.logger != nil {
				o.logger.Warn("dry run failed", zap.String("tag", string(refined.Tag)), zap.Error(err))
			}
			return
		}
		if !ok {
			return
		}
		tx = rebuilt
	}

	outcome, err := o.submitter.Submit(ctx, tx)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("submit failed", zap.String("tag", string(refined.Tag)), zap.Error(err))
		}
		o.recordFailure(now, refined)
		return
	}
	o.recordOutcome(now, outcome)
}

func (o *Orchestrator) recordOutcome(now time.Time, outcome *types.SubmissionOutcome) {
	if o.breaker == nil {
		return
	}
	if outcome.Success || outcome.AlreadyExecuted {
		o.breaker.RecordSuccess(now)
		return
	}
	loss := outcome.GasCost
	if loss == nil {
		loss = big.NewInt(0)
	}
	o.breaker.RecordFailure(now, loss)
}

func (o *Orchestrator) recordFailure(now time.Time, opp *types.Opportunity) {
	if o.breaker == nil {
		return
	}
	o.breaker.RecordFailure(now, o.cfg.EstimatedGas)
}

// buildMinProfit floors the on-chain profit assertion at 90% of the
// optimizer's expected profit, absorbing slippage between build and
// submission, with a floor of 1 so the assertion never degenerates
// into a no-op.
func buildMinProfit(expectedProfit *big.Int) *big.Int {
	minProfit := new(big.Int).Mul(expectedProfit, big.NewInt(9))
	minProfit.Div(minProfit, big.NewInt(10))
	if minProfit.Sign() < 1 {
		return big.NewInt(1)
	}
	return minProfit
}
