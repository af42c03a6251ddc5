package interfaces

import (
	"context"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// Scanner produces ranked candidate opportunities from the current pool
// cache contents.
type Scanner interface {
	ScanTwoHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity
	ScanTriHop(snapshots []*types.PoolSnapshot, decimals types.DecimalsMap, now time.Time) []*types.Opportunity
}

// Optimizer refines an Opportunity's input amount to maximize net
// expected profit, or rejects it (ok=false) if no profitable amount
// exists under the net-profit gate.
type Optimizer interface {
	Optimize(ctx context.Context, opp *types.Opportunity, snapshots map[types.PoolKey]*types.PoolSnapshot, estimatedGas *big.Int) (refined *types.Opportunity, ok bool, err error)
}

// Builder assembles a CandidateTransaction for an Opportunity.
type Builder interface {
	Build(ctx context.Context, opp *types.Opportunity, minProfit *big.Int) (*types.CandidateTransaction, error)
}

// SimulationClient is the node's simulation (dry-run) endpoint, an
// external collaborator consumed here as a typed interface.
type SimulationClient interface {
	DryRun(ctx context.Context, tx *types.CandidateTransaction) (*types.DryRunResult, error)
}

// Signer is the consumed Ed25519 signing interface.
type Signer interface {
	Sign(ctx context.Context, tx *types.CandidateTransaction) ([]byte, error)
}

// Submitter signs and submits a transaction, then extracts the realized
// outcome from emitted events.
type Submitter interface {
	Submit(ctx context.Context, tx *types.CandidateTransaction) (*types.SubmissionOutcome, error)
}
