package onchain

// AssertProfit implements the profit invariant from the spec: given
// amountIn, amountOut, and minProfit, it requires amountOut >= amountIn
// and amountOut - amountIn >= minProfit. The subtraction order matters:
// amountIn + minProfit could overflow uint64 near the maximum value;
// computing amountOut - amountIn first, after confirming amountOut >=
// amountIn, cannot.
//
// On success it returns a profitStamp that Repay requires, and the
// realized profit. The stamp type is unexported, so a caller outside
// this package cannot construct one and therefore cannot call Repay
// without having gone through this assertion first — the same ordering
// the on-chain hot-potato discipline enforces by construction.
func AssertProfit(amountIn, amountOut, minProfit uint64) (profitStamp, uint64, error) {
	if amountOut < amountIn {
		return profitStamp{}, 0, ErrNotProfitable
	}
	profit := amountOut - amountIn
	if profit < minProfit {
		return profitStamp{}, 0, ErrNotProfitable
	}
	return profitStamp{amountIn: amountIn, profit: profit}, profit, nil
}

// profitStamp is produced only by AssertProfit and consumed only by
// Repay (pkg/strategies). Its zero value is never valid: a composition
// cannot fabricate one and skip the assertion.
type profitStamp struct {
	amountIn uint64
	profit   uint64
}

// AmountIn returns the amount the stamp was computed against.
func (s profitStamp) AmountIn() uint64 { return s.amountIn }

// Profit returns the asserted profit.
func (s profitStamp) Profit() uint64 { return s.profit }

// ProfitStamp is the exported alias pkg/strategies threads through its
// five-phase composition; constructing one outside this package is not
// possible because its only field is unexported.
type ProfitStamp = profitStamp
