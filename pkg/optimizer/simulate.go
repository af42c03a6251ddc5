package optimizer

import (
	"errors"
	"math"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/mev-engine/atomic-arb-engine/pkg/venues/weighted"
)

var (
	errNilOpportunity = errors.New("optimizer: nil opportunity or empty leg list")
	errMissingSnapshot = errors.New("optimizer: no snapshot for leg")
)

// resolvedLeg pairs a strategy leg with the pool snapshot it trades
// against, pre-resolved so the search loop never touches the map.
type resolvedLeg struct {
	leg  types.Leg
	snap *types.PoolSnapshot
}

// resolveLegs looks up one snapshot per leg by (Venue, Pool). Legs do
// not carry the asset pair, so lookup scans values rather than keying
// directly; the snapshot set per tick is small (one per monitored
// pool) so this stays cheap.
func resolveLegs(opp *types.Opportunity, snapshots map[types.PoolKey]*types.PoolSnapshot) ([]resolvedLeg, error) {
	out := make([]resolvedLeg, 0, len(opp.Legs))
	for _, leg := range opp.Legs {
		snap := findSnapshot(snapshots, leg.Venue, leg.Pool)
		if snap == nil {
			return nil, errMissingSnapshot
		}
		out = append(out, resolvedLeg{leg: leg, snap: snap})
	}
	return out, nil
}

func findSnapshot(snapshots map[types.PoolKey]*types.PoolSnapshot, venue types.Venue, pool types.PoolID) *types.PoolSnapshot {
	for key, snap := range snapshots {
		if key.Venue == venue && key.Pool == pool {
			return snap
		}
	}
	return nil
}

// upperBound derives a search ceiling from the tightest liquidity
// constraint among the route's legs, falling back to a multiple of the
// opportunity's own probe amount when no leg publishes usable depth.
func upperBound(opp *types.Opportunity, legs []resolvedLeg) float64 {
	probe, _ := new(big.Float).SetInt(opp.AmountIn).Float64()
	if probe <= 0 {
		probe = 1
	}
	ceiling := probe * defaultUpperBoundMultiple

	for _, rl := range legs {
		switch rl.snap.Kind {
		case types.PriceKindReserves:
			if rl.snap.ReserveBase != nil {
				reserve, _ := new(big.Float).SetInt(rl.snap.ReserveBase).Float64()
				if reserve > 0 && reserve/2 < ceiling {
					ceiling = reserve / 2
				}
			}
		case types.PriceKindBookTopOfBook:
			if rl.snap.Liquidity != nil {
				depth, _ := new(big.Float).SetInt(rl.snap.Liquidity).Float64()
				if depth > 0 && depth < ceiling {
					ceiling = depth
				}
			}
		case types.PriceKindSqrtX64:
			if rl.snap.Liquidity != nil {
				liq, _ := new(big.Float).SetInt(rl.snap.Liquidity).Float64()
				if liq > 0 && liq/4 < ceiling {
					ceiling = liq / 4
				}
			}
		}
	}
	return ceiling
}

// simulateRoute walks amount through every leg in order, returning the
// final output amount. A zero output on any leg short-circuits the
// remaining legs to zero, since the route cannot continue.
func simulateRoute(legs []resolvedLeg, amount float64) float64 {
	current := amount
	for _, rl := range legs {
		current = simulateLeg(rl, current)
		if current <= 0 {
			return 0
		}
	}
	return current
}

// simulateLeg approximates the output of a single swap leg against its
// snapshot, dispatching on the venue's price representation.
func simulateLeg(rl resolvedLeg, input float64) float64 {
	snap := rl.snap
	switch snap.Kind {
	case types.PriceKindSqrtX64:
		return simulateCLMMLeg(snap, rl.leg.Reversed, input)
	case types.PriceKindBookTopOfBook:
		return simulateCLOBLeg(snap, rl.leg.Reversed, input)
	case types.PriceKindReserves:
		return simulateWeightedLeg(snap, rl.leg.Reversed, input)
	default:
		return 0
	}
}

// simulateCLMMLeg treats the pool as a single constant-product tick
// around its current price, deriving virtual reserves from sqrtPrice
// and liquidity (x = L / sqrtP, y = L * sqrtP) and reusing the
// weighted-pool constant-product formula with balanced weights.
func simulateCLMMLeg(snap *types.PoolSnapshot, reversed bool, input float64) float64 {
	if snap.SqrtPriceX64 == nil || snap.SqrtPriceX64.Sign() <= 0 || snap.Liquidity == nil || snap.Liquidity.Sign() <= 0 {
		return 0
	}
	sqrtPrice := new(big.Float).SetInt(snap.SqrtPriceX64)
	q64 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))
	normalizedSqrt, _ := new(big.Float).Quo(sqrtPrice, q64).Float64()
	liquidity, _ := new(big.Float).SetInt(snap.Liquidity).Float64()
	if normalizedSqrt <= 0 || math.IsInf(normalizedSqrt, 0) {
		return 0
	}

	reserveBase := liquidity / normalizedSqrt
	reserveQuote := liquidity * normalizedSqrt

	reserveIn, reserveOut := reserveBase, reserveQuote
	if reversed {
		reserveIn, reserveOut = reserveQuote, reserveBase
	}
	return constantProductQuote(reserveIn, reserveOut, input)
}

func simulateWeightedLeg(snap *types.PoolSnapshot, reversed bool, input float64) float64 {
	if snap.ReserveBase == nil || snap.ReserveQuote == nil {
		return 0
	}
	reserveIn, reserveOut := snap.ReserveBase, snap.ReserveQuote
	wIn, wOut := snap.WeightBase, snap.WeightQuote
	if reversed {
		reserveIn, reserveOut = snap.ReserveQuote, snap.ReserveBase
		wIn, wOut = snap.WeightQuote, snap.WeightBase
	}
	if wIn <= 0 {
		wIn = 0.5
	}
	if wOut <= 0 {
		wOut = 0.5
	}
	inputBig := bigFromFloat(input)
	out := weighted.Quote(reserveIn, reserveOut, wIn, wOut, inputBig)
	f, _ := new(big.Float).SetInt(out).Float64()
	return f
}

// simulateCLOBLeg fills at the best quoted price up to the published
// depth; size beyond that depth receives no further fill in this
// approximation, matching the optimizer's "single tick" scope.
func simulateCLOBLeg(snap *types.PoolSnapshot, reversed bool, input float64) float64 {
	var price *big.Float
	if reversed {
		price = snap.BestAsk // buying base with quote, executes at ask
	} else {
		price = snap.BestBid // selling base for quote, executes at bid
	}
	if price == nil {
		return 0
	}
	p, _ := price.Float64()
	if p <= 0 {
		return 0
	}

	depth := input
	if snap.Liquidity != nil {
		liq, _ := new(big.Float).SetInt(snap.Liquidity).Float64()
		if liq > 0 && liq < depth {
			depth = liq
		}
	}

	if reversed {
		return depth / p
	}
	return depth * p
}

// constantProductQuote is the plain x*y=k swap formula, used for the
// CLMM single-tick approximation via the venue-independent
// weighted.Quote helper at balanced weights.
func constantProductQuote(reserveIn, reserveOut, input float64) float64 {
	if reserveIn <= 0 || reserveOut <= 0 || input <= 0 {
		return 0
	}
	reserveInBig := bigFromFloat(reserveIn)
	reserveOutBig := bigFromFloat(reserveOut)
	inputBig := bigFromFloat(input)
	out := weighted.Quote(reserveInBig, reserveOutBig, 0.5, 0.5, inputBig)
	f, _ := new(big.Float).SetInt(out).Float64()
	return f
}
