package strategies

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/onchain"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Params is everything one execution of a Template needs: the
// capability presented for this call, the pause switch to check, the
// adapter for each venue the template touches, the concrete pool per
// leg (in template-leg order), the input amount, and the minimum
// profit floor.
type Params struct {
	Capability *onchain.Capability
	Pause      *onchain.PauseSwitch
	Adapters   map[types.Venue]interfaces.VenueAdapter
	Pools      []types.PoolID
	AmountIn   uint64
	MinProfit  uint64
	Sink       onchain.EventSink
}

// Execute runs the six-step shape common to every variant: guard,
// borrow, route, assert profit, repay, emit. It is the sole
// interpreter for all 27 templates; no per-variant function exists.
func Execute(ctx context.Context, tmpl *Template, p Params) (onchain.ProfitStamp, error) {
	if err := guard(p); err != nil {
		return onchain.ProfitStamp{}, err
	}
	if len(tmpl.Legs) != len(p.Pools) {
		return onchain.ProfitStamp{}, fmt.Errorf("strategies: %s expects %d pools, got %d", tmpl.Tag, len(tmpl.Legs), len(p.Pools))
	}

	received, receipt, sourceAdapter, err := borrow(ctx, tmpl, p)
	if err != nil {
		return onchain.ProfitStamp{}, err
	}

	output, dust, err := route(ctx, tmpl, p, received)
	if err != nil {
		return onchain.ProfitStamp{}, err
	}

	debt := onchain.RepaymentAmount(receipt)
	stamp, profit, err := onchain.AssertProfit(debt, output.Uint64(), p.MinProfit)
	if err != nil {
		return onchain.ProfitStamp{}, err
	}

	if err := repay(ctx, tmpl, p, sourceAdapter, receipt, stamp); err != nil {
		return onchain.ProfitStamp{}, err
	}

	if p.Sink != nil {
		onchain.EmitStrategyEvent(p.Sink, tmpl.Tag, stamp, dust.Uint64())
	}

	_ = profit
	return stamp, nil
}

func guard(p Params) error {
	if p.AmountIn == 0 {
		return onchain.ErrZeroAmount
	}
	if p.Pause != nil {
		if err := p.Pause.AssertNotPaused(); err != nil {
			return err
		}
	}
	if p.Capability == nil {
		return fmt.Errorf("strategies: capability required for strategy entry")
	}
	return nil
}

func borrow(ctx context.Context, tmpl *Template, p Params) (*big.Int, onchain.FlashReceipt, interfaces.VenueAdapter, error) {
	source := tmpl.Legs[0]
	adapter, ok := p.Adapters[source.Venue]
	if !ok {
		return nil, nil, nil, fmt.Errorf("strategies: no adapter registered for source venue %s", source.Venue)
	}
	amount := new(big.Int).SetUint64(p.AmountIn)

	switch a := adapter.(type) {
	case interfaces.FlashVenueAdapter:
		var received *big.Int
		var receipt onchain.FlashReceipt
		var err error
		if source.Reversed {
			received, receipt, err = a.FlashSwapBToA(ctx, p.Pools[0], amount)
		} else {
			received, receipt, err = a.FlashSwapAToB(ctx, p.Pools[0], amount)
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("strategies: borrow on %s: %w", source.Venue, err)
		}
		return received, receipt, adapter, nil
	case interfaces.BaseFlashVenueAdapter:
		received, receipt, err := a.FlashBorrowBase(ctx, p.Pools[0], amount)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("strategies: base flash borrow on %s: %w", source.Venue, err)
		}
		return received, receipt, adapter, nil
	default:
		return nil, nil, nil, fmt.Errorf("strategies: venue %s cannot serve as a flash source", source.Venue)
	}
}

// route walks the non-source legs in order, returning the final output
// and the sum of every leg's settled dust remainder.
func route(ctx context.Context, tmpl *Template, p Params, received *big.Int) (*big.Int, *big.Int, error) {
	current := received
	totalDust := big.NewInt(0)
	for i := 1; i < len(tmpl.Legs); i++ {
		leg := tmpl.Legs[i]
		adapter, ok := p.Adapters[leg.Venue]
		if !ok {
			return nil, nil, fmt.Errorf("strategies: no adapter registered for leg venue %s", leg.Venue)
		}
		var out, dust *big.Int
		var err error
		if leg.Reversed {
			out, dust, err = adapter.SwapBToA(ctx, p.Pools[i], current)
		} else {
			out, dust, err = adapter.SwapAToB(ctx, p.Pools[i], current)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("strategies: route leg %d on %s: %w", i, leg.Venue, err)
		}
		if dust != nil {
			totalDust.Add(totalDust, dust)
		}
		current = out
	}
	return current, totalDust, nil
}

// repay requires a ProfitStamp, which only onchain.AssertProfit can
// produce, so a composition cannot settle the flash receipt without
// having first asserted profitability.
func repay(ctx context.Context, tmpl *Template, p Params, sourceAdapter interfaces.VenueAdapter, receipt onchain.FlashReceipt, stamp onchain.ProfitStamp) error {
	repayment := new(big.Int).SetUint64(stamp.AmountIn())

	switch a := sourceAdapter.(type) {
	case interfaces.FlashVenueAdapter:
		return a.RepayFlashSwap(ctx, p.Pools[0], repayment, receipt)
	case interfaces.BaseFlashVenueAdapter:
		return a.FlashReturnBase(ctx, p.Pools[0], repayment, receipt)
	default:
		return fmt.Errorf("strategies: venue %s cannot settle a flash receipt", tmpl.Legs[0].Venue)
	}
}
