package scanner

import (
	"math/big"
	"sort"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

var _ interfaces.Scanner = (*Scanner)(nil)

// ScanTwoHop enumerates ordered pool pairs (i, j), i != j, quoting the
// same asset pair, and emits a candidate opportunity whenever pool j's
// normalized price exceeds pool i's by more than TwoHopThreshold.
// Complexity is O(N^2) over the fresh, normalizable pool set.
func (s *Scanner) ScanTwoHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity {
	pools := freshPools(snapshots, now)

	type priced struct {
		snap  *types.PoolSnapshot
		price float64
	}
	byPair := make(map[pairKey][]priced)
	for _, p := range pools {
		price, ok := p.NormalizedPrice(decimals)
		if !ok || price <= 0 {
			continue
		}
		key := normalizedPair(p.Key.Base, p.Key.Quote)
		byPair[key] = append(byPair[key], priced{snap: p, price: price})
	}

	var out []*types.Opportunity
	for _, group := range byPair {
		for i := range group {
			for j := range group {
				if i == j {
					continue
				}
				// lo is the cheaper-in-base pool, hi the dearer one. The
				// flash source must be hi (swap base->quote there to
				// receive the most quote for the borrowed base); the sink
				// must be lo, reversed (quote->base), to close the loop
				// buying base back at the cheaper rate.
				lo, hi := group[i], group[j]
				if lo.snap.Key.Venue == hi.snap.Key.Venue && lo.snap.Key.Pool == hi.snap.Key.Pool {
					continue
				}
				delta := (hi.price - lo.price) / lo.price
				if delta <= TwoHopThreshold {
					continue
				}

				if _, ok := templateFor(hi.snap.Key.Venue, lo.snap.Key.Venue); !ok {
					continue
				}

				opp := s.buildTwoHopOpportunity(hi.snap, lo.snap, delta, now)
				out = append(out, opp)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedProfit.Cmp(out[j].EstimatedProfit) > 0
	})
	return out
}

// buildTwoHopOpportunity assembles the opportunity from the flash source
// (the dearer pool, swapped base->quote) and the sink (the cheaper pool,
// swapped quote->base to close the loop).
func (s *Scanner) buildTwoHopOpportunity(source, sink *types.PoolSnapshot, delta float64, now time.Time) *types.Opportunity {
	probe := big.NewInt(s.ProbeAmount)
	profitFloat := float64(s.ProbeAmount) * delta
	profit := big.NewInt(int64(profitFloat))
	if profit.Sign() < 0 {
		profit = big.NewInt(0)
	}
	amountOut := new(big.Int).Add(probe, profit)

	minTS := source.CapturedAt
	if sink.CapturedAt.Before(minTS) {
		minTS = sink.CapturedAt
	}

	tag := types.StrategyTag("arb_" + string(source.Key.Venue) + "_to_" + string(sink.Key.Venue))
	return &types.Opportunity{
		Tag: tag,
		Legs: []types.Leg{
			{Venue: source.Key.Venue, Pool: source.Key.Pool, Reversed: false},
			{Venue: sink.Key.Venue, Pool: sink.Key.Pool, Reversed: true},
		},
		SourceLegIndex:     0,
		InputAsset:         source.Key.Base,
		AmountIn:           probe,
		EstimatedAmountOut: amountOut,
		EstimatedProfit:    profit,
		DiscoveredAt:       minTS,
	}
}
