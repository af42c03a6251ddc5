package onchain

import "github.com/mev-engine/atomic-arb-engine/pkg/types"

// StrategyEvent is the structured record emitted after profit is
// asserted: {strategy_tag, amount_in, profit, dust}.
type StrategyEvent struct {
	Strategy types.StrategyTag
	AmountIn uint64
	Profit   uint64
	// Dust is the sum of every route leg's non-zero remainder, already
	// transferred back to the sender by the venue's own swap call; it is
	// reported here for observability, not re-routed into the profit.
	Dust uint64
}

// EventSink receives strategy events as they are emitted. This module
// ships no implementation of it; strategies.Execute skips emission when
// its Params.Sink is nil.
type EventSink interface {
	EmitStrategyEvent(StrategyEvent)
}

// EmitStrategyEvent builds the event record from a stamp produced by
// AssertProfit and hands it to sink. profit is taken from the stamp,
// which AssertProfit issues only when amountOut >= amountIn, so it is
// never negative; no separate max(0, ...) guard is applied here.
// dust is the composition's total settled remainder, for observability.
func EmitStrategyEvent(sink EventSink, tag types.StrategyTag, stamp profitStamp, dust uint64) {
	profit := stamp.Profit()
	sink.EmitStrategyEvent(StrategyEvent{
		Strategy: tag,
		AmountIn: stamp.AmountIn(),
		Profit:   profit,
		Dust:     dust,
	})
}
