package onchain

// FlashReceipt is the conceptual non-droppable handle produced by a
// flash primitive. It must be consumed (via a venue adapter's Repay call)
// before the composition commits. Three shapes exist across the five
// venues.
type FlashReceipt interface {
	// Venue identifies which venue issued the receipt.
	Venue() string
}

// SelfDescribingReceipt carries a queryable debt amount (venue C1).
type SelfDescribingReceipt interface {
	FlashReceipt
	DebtAmount() uint64
}

// OpaqueReceipt carries no reader; the caller must repay exactly the
// amount it originally requested (venues C2 and C3 — see the open
// question on future fee introduction).
type OpaqueReceipt interface {
	FlashReceipt
	RequestedAmount() uint64
}

// AmountFeeHiddenReceipt is like OpaqueReceipt, but documents that a fee
// term may be introduced in a future venue upgrade; repayment still uses
// RequestedAmount until that happens.
type AmountFeeHiddenReceipt interface {
	OpaqueReceipt
}

// RepaymentAmount selects the amount to repay for a receipt: the debt
// reader's value when available, otherwise the originally requested
// amount. This is the sole place that risk (spec §9, a future fee
// introduction on an opaque-receipt venue causing the venue's own
// assertion to abort) is accepted rather than probed for in advance.
func RepaymentAmount(r FlashReceipt) uint64 {
	if sd, ok := r.(SelfDescribingReceipt); ok {
		return sd.DebtAmount()
	}
	if op, ok := r.(OpaqueReceipt); ok {
		return op.RequestedAmount()
	}
	return 0
}
