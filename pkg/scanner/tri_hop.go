package scanner

import (
	"math/big"
	"sort"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/strategies"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// edge is one directed leg of the asset graph: trading Base for Quote
// on a specific pool at the given rate (quote per base).
type edge struct {
	snap *types.PoolSnapshot
	from types.AssetType
	to   types.AssetType
	rate float64 // units of `to` received per unit of `from`
}

// ScanTriHop enumerates closed three-pool cycles A->B->C->A across the
// fresh pool set and emits a candidate whenever the composite cross-rate
// exceeds TriHopThreshold. Pruning: only edges that participate in some
// closed cycle in the asset graph are considered, per the spec's
// "skip triples that do not form a closed cycle" guidance.
func (s *Scanner) ScanTriHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity {
	pools := freshPools(snapshots, now)

	var edges []edge
	for _, p := range pools {
		price, ok := p.NormalizedPrice(decimals)
		if !ok || price <= 0 {
			continue
		}
		edges = append(edges,
			edge{snap: p, from: p.Key.Base, to: p.Key.Quote, rate: price},
			edge{snap: p, from: p.Key.Quote, to: p.Key.Base, rate: 1 / price},
		)
	}

	byFrom := make(map[types.AssetType][]edge)
	for _, e := range edges {
		byFrom[e.from] = append(byFrom[e.from], e)
	}

	var out []*types.Opportunity
	for _, e1 := range edges {
		for _, e2 := range byFrom[e1.to] {
			if samePool(e1, e2) {
				continue
			}
			for _, e3 := range byFrom[e2.to] {
				if e3.to != e1.from {
					continue // not a closed cycle
				}
				if samePool(e2, e3) || samePool(e1, e3) {
					continue
				}
				composite := e1.rate * e2.rate * e3.rate
				if composite <= TriHopThreshold {
					continue
				}
				tag := types.StrategyTag("tri_" + string(e1.snap.Key.Venue) + "_" + string(e2.snap.Key.Venue) + "_" + string(e3.snap.Key.Venue))
				if _, ok := strategies.Lookup(tag); !ok {
					continue
				}
				out = append(out, s.buildTriHopOpportunity(e1, e2, e3, composite))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EstimatedProfit.Cmp(out[j].EstimatedProfit) > 0
	})
	return out
}

func samePool(a, b edge) bool {
	return a.snap.Key.Venue == b.snap.Key.Venue && a.snap.Key.Pool == b.snap.Key.Pool
}

func (s *Scanner) buildTriHopOpportunity(e1, e2, e3 edge, composite float64) *types.Opportunity {
	probe := big.NewInt(s.ProbeAmount)
	profitFloat := float64(s.ProbeAmount) * (composite - 1)
	profit := big.NewInt(int64(profitFloat))
	if profit.Sign() < 0 {
		profit = big.NewInt(0)
	}
	amountOut := new(big.Int).Add(probe, profit)

	minTS := e1.snap.CapturedAt
	for _, e := range []edge{e2, e3} {
		if e.snap.CapturedAt.Before(minTS) {
			minTS = e.snap.CapturedAt
		}
	}

	tag := types.StrategyTag("tri_" + string(e1.snap.Key.Venue) + "_" + string(e2.snap.Key.Venue) + "_" + string(e3.snap.Key.Venue))
	return &types.Opportunity{
		Tag: tag,
		Legs: []types.Leg{
			{Venue: e1.snap.Key.Venue, Pool: e1.snap.Key.Pool, Reversed: e1.from == e1.snap.Key.Quote},
			{Venue: e2.snap.Key.Venue, Pool: e2.snap.Key.Pool, Reversed: e2.from == e2.snap.Key.Quote},
			{Venue: e3.snap.Key.Venue, Pool: e3.snap.Key.Pool, Reversed: e3.from == e3.snap.Key.Quote},
		},
		SourceLegIndex:     0,
		InputAsset:         e1.from,
		AmountIn:           probe,
		EstimatedAmountOut: amountOut,
		EstimatedProfit:    profit,
		DiscoveredAt:       minTS,
	}
}
