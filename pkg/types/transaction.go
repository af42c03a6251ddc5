package types

import (
	"math/big"
	"time"
)

// CandidateTransaction is the assembled, not-yet-submitted transaction
// for one strategy entry call. The underlying transaction-block builder,
// Ed25519 signer, and RPC submission are external collaborators; this
// struct is the argument set the Builder hands to them.
type CandidateTransaction struct {
	Tag   StrategyTag
	Legs  []Leg

	AmountIn  *big.Int
	MinProfit *big.Int

	GasBudget uint64

	// CollateralAssets names any venue-specific collateral the entry
	// requires beyond the pool handles themselves (e.g. the order book's
	// protocol-fee coin).
	CollateralAssets []AssetType

	BuiltAt time.Time
}

// DryRunResult is the node simulation endpoint's verdict on a
// CandidateTransaction before it is signed and submitted.
type DryRunResult struct {
	Success bool

	ComputationCost *big.Int
	StorageCost     *big.Int
	StorageRebate   *big.Int

	ActualAmountOut *big.Int

	FailureReason string
}

// NetGas returns computation + storage - rebate.
func (d *DryRunResult) NetGas() *big.Int {
	net := new(big.Int).Add(d.ComputationCost, d.StorageCost)
	net.Sub(net, d.StorageRebate)
	return net
}

// SubmissionOutcome records what happened when a signed transaction was
// submitted to the chain.
type SubmissionOutcome struct {
	Digest string

	// AlreadyExecuted is set when the submission failed because the
	// transaction had already landed; this is treated as idempotent
	// success with no new effect.
	AlreadyExecuted bool

	Success        bool
	RealizedProfit *big.Int
	GasCost        *big.Int

	Error error

	SubmittedAt time.Time
}
