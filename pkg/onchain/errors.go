// Package onchain is the canonical, deterministic reference of the atomic
// composition engine's entry behavior: capability gating, the pause
// switch, the profit invariant, and event emission. It is consumed both
// as the local pre-check the Optimizer and Builder run before a
// transaction is ever submitted, and as the source of truth for the
// entry argument order the Builder encodes (see pkg/strategies).
//
// The venue contracts, the transaction-block builder, and Ed25519
// signing/RPC are external collaborators and are never reimplemented
// here; this package only models what happens once a strategy entry is
// invoked with a capability, a pause-switch reference, and a set of
// venue handles already in hand.
package onchain

import "errors"

// Error codes mirror the on-chain error taxonomy from the spec. The
// module-scoped E_NOT_PROFITABLE and the top-level E_ZERO_AMOUNT share
// code 1 on-chain; they are distinct sentinels here so callers can branch
// on which failed.
var (
	ErrZeroAmount    = errors.New("onchain: E_ZERO_AMOUNT")
	ErrNotProfitable = errors.New("onchain: E_NOT_PROFITABLE")
	ErrPaused        = errors.New("onchain: E_PAUSED")
)
