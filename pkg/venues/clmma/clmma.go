// Package clmma adapts the first concentrated-liquidity AMM venue. Its
// flash-swap receipt is self-describing: the debt amount can be read
// back directly, so repayment never has to fall back on the originally
// requested amount.
package clmma

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/onchain"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

var (
	minSqrtPriceX64    = big.NewInt(4_295_000_000)
	maxSqrtPriceX64, _ = new(big.Int).SetString("79230000000000000000000000000", 10)
)

// Binding is the external contract call surface this adapter wraps. It
// is consumed, not implemented, here.
type Binding interface {
	SwapExactIn(ctx context.Context, pool types.PoolID, aToB bool, input *big.Int, sqrtPriceLimit *big.Int) (output *big.Int, remainder *big.Int, err error)
	FlashSwap(ctx context.Context, pool types.PoolID, aToB bool, amount *big.Int) (received *big.Int, debt *big.Int, receiptHandle uint64, err error)
	RepayFlash(ctx context.Context, pool types.PoolID, receiptHandle uint64, repayment *big.Int) error
}

// Receipt is clmma's self-describing flash receipt: DebtAmount can be
// read directly instead of relying on the caller's remembered request.
type Receipt struct {
	handle uint64
	debt   *big.Int
}

func (r Receipt) Venue() string      { return string(types.VenueCLMMA) }
func (r Receipt) DebtAmount() uint64 { return r.debt.Uint64() }

var _ onchain.SelfDescribingReceipt = Receipt{}

// Adapter implements interfaces.FlashVenueAdapter over Binding.
type Adapter struct {
	binding Binding
}

func New(binding Binding) *Adapter {
	return &Adapter{binding: binding}
}

func (a *Adapter) Venue() types.Venue { return types.VenueCLMMA }

func (a *Adapter) SwapAToB(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.SwapExactIn(ctx, pool, true, input, maxSqrtPriceX64)
	if err != nil {
		return nil, nil, fmt.Errorf("clmma: swap a->b: %w", err)
	}
	return out, settleDust(remainder), nil
}

func (a *Adapter) SwapBToA(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.SwapExactIn(ctx, pool, false, input, minSqrtPriceX64)
	if err != nil {
		return nil, nil, fmt.Errorf("clmma: swap b->a: %w", err)
	}
	return out, settleDust(remainder), nil
}

func (a *Adapter) MinSqrtPrice() *big.Int { return new(big.Int).Set(minSqrtPriceX64) }
func (a *Adapter) MaxSqrtPrice() *big.Int { return new(big.Int).Set(maxSqrtPriceX64) }

func (a *Adapter) SettleDust(remainder *big.Int) *big.Int { return settleDust(remainder) }

func (a *Adapter) FlashSwapAToB(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error) {
	received, debt, handle, err := a.binding.FlashSwap(ctx, pool, true, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("clmma: flash swap a->b: %w", err)
	}
	return received, Receipt{handle: handle, debt: debt}, nil
}

func (a *Adapter) FlashSwapBToA(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error) {
	received, debt, handle, err := a.binding.FlashSwap(ctx, pool, false, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("clmma: flash swap b->a: %w", err)
	}
	return received, Receipt{handle: handle, debt: debt}, nil
}

func (a *Adapter) RepayFlashSwap(ctx context.Context, pool types.PoolID, repayment *big.Int, receipt onchain.FlashReceipt) error {
	r, ok := receipt.(Receipt)
	if !ok {
		return fmt.Errorf("clmma: repay: receipt is not a clmma.Receipt")
	}
	if err := a.binding.RepayFlash(ctx, pool, r.handle, repayment); err != nil {
		return fmt.Errorf("clmma: repay flash: %w", err)
	}
	return nil
}

func settleDust(remainder *big.Int) *big.Int {
	if remainder == nil || remainder.Sign() == 0 {
		return nil
	}
	return new(big.Int).Set(remainder)
}
