package interfaces

import (
	"context"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/onchain"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// VenueAdapter is the uniform wrapper every venue package implements over
// its underlying contract bindings (consumed as typed interfaces; the
// bindings themselves are external collaborators). It normalizes the
// value model (balance vs. wrapping coin), at the adapter boundary.
type VenueAdapter interface {
	Venue() types.Venue

	// SwapAToB consumes input of asset A and returns output of asset B,
	// plus any non-zero dust already transferred back to the sender by
	// the underlying swap call.
	SwapAToB(ctx context.Context, pool types.PoolID, input *big.Int) (output *big.Int, dust *big.Int, err error)

	// SwapBToA mirrors SwapAToB in the opposite direction.
	SwapBToA(ctx context.Context, pool types.PoolID, input *big.Int) (output *big.Int, dust *big.Int, err error)

	// MinSqrtPrice and MaxSqrtPrice are the extreme price-limit constants
	// that let a swap traverse the venue's full tick range. Venues without
	// a tick range (the order book, the weighted AMM) return nil, nil.
	MinSqrtPrice() *big.Int
	MaxSqrtPrice() *big.Int

	// SettleDust destroys a zero-valued remainder and otherwise reports
	// the non-zero amount that must be transferred back to the sender.
	SettleDust(remainder *big.Int) (transferBack *big.Int)
}

// FlashVenueAdapter is implemented by the three flash-swap venues
// (clmma, clmmb, flashclmm); the order book flash-borrows through
// BaseFlashVenueAdapter instead, and the weighted AMM implements
// neither and is therefore only usable as a non-source leg.
type FlashVenueAdapter interface {
	VenueAdapter

	FlashSwapAToB(ctx context.Context, pool types.PoolID, amount *big.Int) (receivedB *big.Int, receipt onchain.FlashReceipt, err error)
	FlashSwapBToA(ctx context.Context, pool types.PoolID, amount *big.Int) (receivedA *big.Int, receipt onchain.FlashReceipt, err error)
	RepayFlashSwap(ctx context.Context, pool types.PoolID, repayment *big.Int, receipt onchain.FlashReceipt) error
}

// BaseFlashVenueAdapter is implemented only by the order-book venue,
// whose flash primitive borrows the protocol's base collateral rather
// than swapping through a pool.
type BaseFlashVenueAdapter interface {
	VenueAdapter

	FlashBorrowBase(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error)
	FlashReturnBase(ctx context.Context, pool types.PoolID, coin *big.Int, receipt onchain.FlashReceipt) error
}
