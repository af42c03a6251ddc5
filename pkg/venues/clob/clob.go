// Package clob adapts the central-limit-order-book venue. It has no
// tick range, so its price-limit constants are nil; it flash-borrows
// the protocol's base collateral (the deep-fee coin) rather than
// swapping through a pool, and its receipt is opaque.
package clob

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/onchain"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Binding is the external order-book contract call surface this
// adapter wraps.
type Binding interface {
	PlaceMarketOrder(ctx context.Context, pool types.PoolID, aToB bool, input *big.Int) (output *big.Int, remainder *big.Int, err error)
	FlashBorrowBase(ctx context.Context, pool types.PoolID, feeCoin types.PoolID, amount *big.Int) (*big.Int, uint64, error)
	FlashReturnBase(ctx context.Context, pool types.PoolID, receiptHandle uint64, coin *big.Int) error
}

// Receipt is clob's opaque flash-borrow-base receipt.
type Receipt struct {
	handle    uint64
	requested *big.Int
}

func (r Receipt) Venue() string           { return string(types.VenueCLOB) }
func (r Receipt) RequestedAmount() uint64 { return r.requested.Uint64() }

var _ onchain.OpaqueReceipt = Receipt{}

// Adapter implements interfaces.BaseFlashVenueAdapter over Binding. The
// DEEP_FEE_COIN_ID collateral handle is supplied per call, matching the
// order-book venue's need for a protocol-fee asset alongside the base
// flash-borrow.
type Adapter struct {
	binding Binding
	feeCoin types.PoolID
}

func New(binding Binding, feeCoin types.PoolID) *Adapter {
	return &Adapter{binding: binding, feeCoin: feeCoin}
}

func (a *Adapter) Venue() types.Venue { return types.VenueCLOB }

func (a *Adapter) SwapAToB(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.PlaceMarketOrder(ctx, pool, true, input)
	if err != nil {
		return nil, nil, fmt.Errorf("clob: market order a->b: %w", err)
	}
	return out, settleDust(remainder), nil
}

func (a *Adapter) SwapBToA(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	out, remainder, err := a.binding.PlaceMarketOrder(ctx, pool, false, input)
	if err != nil {
		return nil, nil, fmt.Errorf("clob: market order b->a: %w", err)
	}
	return out, settleDust(remainder), nil
}

// MinSqrtPrice and MaxSqrtPrice are nil: the order book has no tick
// range to traverse.
func (a *Adapter) MinSqrtPrice() *big.Int { return nil }
func (a *Adapter) MaxSqrtPrice() *big.Int { return nil }

func (a *Adapter) SettleDust(remainder *big.Int) *big.Int { return settleDust(remainder) }

func (a *Adapter) FlashBorrowBase(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error) {
	received, handle, err := a.binding.FlashBorrowBase(ctx, pool, a.feeCoin, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("clob: flash borrow base: %w", err)
	}
	return received, Receipt{handle: handle, requested: new(big.Int).Set(amount)}, nil
}

func (a *Adapter) FlashReturnBase(ctx context.Context, pool types.PoolID, coin *big.Int, receipt onchain.FlashReceipt) error {
	r, ok := receipt.(Receipt)
	if !ok {
		return fmt.Errorf("clob: return base: receipt is not a clob.Receipt")
	}
	if err := a.binding.FlashReturnBase(ctx, pool, r.handle, coin); err != nil {
		return fmt.Errorf("clob: flash return base: %w", err)
	}
	return nil
}

func settleDust(remainder *big.Int) *big.Int {
	if remainder == nil || remainder.Sign() == 0 {
		return nil
	}
	return new(big.Int).Set(remainder)
}
