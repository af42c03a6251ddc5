// Package builder assembles CandidateTransactions from optimizer output,
// validates them against the node's simulation endpoint before
// submission, and submits signed transactions while tolerating
// already-executed resubmissions. Grounded on the teacher's
// pkg/replay.ReplayHarnessImpl (setup/execute/analyze staging with an
// accumulated Errors/Warnings result) and pkg/simulation.anvilFork's
// pre-submission dry run, generalized from a historical-transaction
// replay tool to a pre-submission gate for freshly discovered routes.
package builder

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

var errNilOpportunity = errors.New("builder: nil opportunity")

// gasBudgetByHops mirrors the teacher's per-strategy gas usage table,
// here keyed by hop count since every variant with the same hop count
// shares one flash-borrow-route-repay call shape.
var gasBudgetByHops = map[int]uint64{
	2: 180_000,
	3: 260_000,
}

const defaultGasBudget = 220_000

// Builder implements interfaces.Builder.
type Builder struct {
	// deepFeeCoin is the collateral coin CLOB legs require beyond the
	// pool handles themselves; empty if the deployment has none
	// configured.
	deepFeeCoin types.AssetType
}

var _ interfaces.Builder = (*Builder)(nil)

func New(deepFeeCoin types.AssetType) *Builder {
	return &Builder{deepFeeCoin: deepFeeCoin}
}

// Build assembles a CandidateTransaction for opp with the given minimum
// acceptable profit floor.
func (b *Builder) Build(ctx context.Context, opp *types.Opportunity, minProfit *big.Int) (*types.CandidateTransaction, error) {
	if opp == nil || len(opp.Legs) == 0 {
		return nil, errNilOpportunity
	}

	tx := &types.CandidateTransaction{
		Tag:       opp.Tag,
		Legs:      opp.Legs,
		AmountIn:  new(big.Int).Set(opp.AmountIn),
		MinProfit: new(big.Int).Set(minProfit),
		GasBudget: gasBudgetFor(len(opp.Legs)),
		BuiltAt:   time.Now(),
	}

	if b.deepFeeCoin != "" && usesCLOB(opp.Legs) {
		tx.CollateralAssets = []types.AssetType{b.deepFeeCoin}
	}

	return tx, nil
}

func gasBudgetFor(hops int) uint64 {
	if budget, ok := gasBudgetByHops[hops]; ok {
		return budget
	}
	return defaultGasBudget
}

func usesCLOB(legs []types.Leg) bool {
	for _, l := range legs {
		if l.Venue == types.VenueCLOB {
			return true
		}
	}
	return false
}
