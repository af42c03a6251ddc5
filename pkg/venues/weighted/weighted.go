// Package weighted adapts the weighted-AMM venue. It does not support
// flash borrowing, so it only ever appears as an intermediate or final
// swap leg, never as a composition's source of liquidity. Its internal
// slippage parameter is disabled (passed as the maximum integer); a
// minimum output of 1 guards against the degenerate zero-output case.
package weighted

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

var maxUint128, _ = new(big.Int).SetString("340282366920938463463374607431768211455", 10)

// minOutputGuard is the minimum output supplied as defense against a
// degenerate zero-output swap.
var minOutputGuard = big.NewInt(1)

// Binding is the external weighted-pool contract call surface this
// adapter wraps.
type Binding interface {
	Swap(ctx context.Context, pool types.PoolID, aToB bool, input *big.Int, minOut *big.Int, maxSlippage *big.Int) (output *big.Int, remainder *big.Int, err error)
}

// Adapter implements interfaces.VenueAdapter (not FlashVenueAdapter)
// over Binding.
type Adapter struct {
	binding Binding
}

func New(binding Binding) *Adapter {
	return &Adapter{binding: binding}
}

func (a *Adapter) Venue() types.Venue { return types.VenueWeighted }

func (a *Adapter) SwapAToB(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.Swap(ctx, pool, true, input, minOutputGuard, maxUint128)
	if err != nil {
		return nil, nil, fmt.Errorf("weighted: swap a->b: %w", err)
	}
	return out, settleDust(remainder), nil
}

func (a *Adapter) SwapBToA(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.Swap(ctx, pool, false, input, minOutputGuard, maxUint128)
	if err != nil {
		return nil, nil, fmt.Errorf("weighted: swap b->a: %w", err)
	}
	return out, settleDust(remainder), nil
}

// MinSqrtPrice and MaxSqrtPrice are nil: the weighted AMM has no tick
// range.
func (a *Adapter) MinSqrtPrice() *big.Int { return nil }
func (a *Adapter) MaxSqrtPrice() *big.Int { return nil }

func (a *Adapter) SettleDust(remainder *big.Int) *big.Int { return settleDust(remainder) }

func settleDust(remainder *big.Int) *big.Int {
	if remainder == nil || remainder.Sign() == 0 {
		return nil
	}
	return new(big.Int).Set(remainder)
}

// Quote computes the expected output of a weighted-AMM swap given
// reserves and weights, used by the optimizer's per-leg simulation
// rather than by on-chain composition. wIn/wOut are the published
// weights (e.g. 0.5/0.5 for a balanced pool).
func Quote(reserveIn, reserveOut *big.Int, wIn, wOut float64, input *big.Int) *big.Int {
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() <= 0 || input.Sign() <= 0 {
		return big.NewInt(0)
	}
	rIn, _ := new(big.Float).SetInt(reserveIn).Float64()
	rOut, _ := new(big.Float).SetInt(reserveOut).Float64()
	amt, _ := new(big.Float).SetInt(input).Float64()

	// weighted-AMM spot formula: out = rOut * (1 - (rIn/(rIn+amt))^(wIn/wOut))
	ratio := rIn / (rIn + amt)
	exponent := wIn / wOut
	out := rOut * (1 - math.Pow(ratio, exponent))
	if out < 0 || math.IsNaN(out) {
		return big.NewInt(0)
	}
	result, _ := big.NewFloat(out).Int(nil)
	return result
}
