// Package optimizer refines a Scanner-discovered Opportunity's input
// amount to the value that maximizes net expected profit, by ternary
// search over the unimodal profit curve each strategy traces as a
// function of its borrowed amount. Grounded on the teacher's
// pkg/profit.Calculator (per-strategy thresholds, net-profit gating
// after subtracting estimated costs) and pkg/profit.GasEstimator
// (fixed per-operation gas table), adapted from Monte-Carlo risk
// scoring over a fixed MEV transaction to a deterministic single-pass
// search over each leg's own AMM/order-book/weighted-pool curve.
package optimizer

import (
	"context"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// maxIterations bounds the ternary search; each round keeps 2/3 of the
// interval, so 40 rounds shrink it by a factor of about 10^7.
const maxIterations = 40

// minInterval halts the search early once the bracket has narrowed to
// a single smallest-denomination unit.
const minInterval = 1.0

// defaultUpperBoundMultiple scales the opportunity's probe amount up
// to arrive at a search ceiling when no tighter liquidity-derived
// bound is available.
const defaultUpperBoundMultiple = 100000

// Optimizer implements interfaces.Optimizer.
type Optimizer struct{}

var _ interfaces.Optimizer = (*Optimizer)(nil)

func New() *Optimizer { return &Optimizer{} }

// Optimize searches for the input amount in [1, upperBound] that
// maximizes EstimatedAmountOut - AmountIn - estimatedGas, simulating
// each leg against the supplied snapshots. It returns ok=false when no
// amount in range clears the net-profit gate.
func (o *Optimizer) Optimize(ctx context.Context, opp *types.Opportunity, snapshots map[types.PoolKey]*types.PoolSnapshot, estimatedGas *big.Int) (*types.Opportunity, bool, error) {
	if opp == nil || len(opp.Legs) == 0 {
		return nil, false, errNilOpportunity
	}

	legs, err := resolveLegs(opp, snapshots)
	if err != nil {
		return nil, false, err
	}

	upper := upperBound(opp, legs)
	if upper < 1 {
		return nil, false, nil
	}

	lo, hi := 1.0, upper
	gasF, _ := new(big.Float).SetInt(estimatedGas).Float64()

	netProfit := func(amount float64) float64 {
		out := simulateRoute(legs, amount)
		return out - amount - gasF
	}

	for i := 0; i < maxIterations && hi-lo > minInterval; i++ {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		m1 := lo + (hi-lo)/3
		m2 := hi - (hi-lo)/3
		if netProfit(m1) < netProfit(m2) {
			lo = m1
		} else {
			hi = m2
		}
	}

	best := (lo + hi) / 2
	bestNet := netProfit(best)
	if bestNet <= 0 {
		return nil, false, nil
	}

	amountIn := bigFromFloat(best)
	amountOut := bigFromFloat(simulateRoute(legs, best))
	profit := new(big.Int).Sub(amountOut, amountIn)
	if profit.Sign() <= 0 {
		return nil, false, nil
	}

	refined := &types.Opportunity{
		Tag:                opp.Tag,
		Legs:               opp.Legs,
		SourceLegIndex:     opp.SourceLegIndex,
		InputAsset:         opp.InputAsset,
		AmountIn:           amountIn,
		EstimatedAmountOut: amountOut,
		EstimatedProfit:    profit,
		DiscoveredAt:       opp.DiscoveredAt,
	}
	return refined, true, nil
}

func bigFromFloat(f float64) *big.Int {
	if f < 0 {
		f = 0
	}
	out, _ := big.NewFloat(f).Int(nil)
	return out
}
