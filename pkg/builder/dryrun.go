package builder

import (
	"context"
	"fmt"
	"math/big"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// tightenNumerator/tightenDenominator apply a 2% slippage buffer when
// rebuilding the minimum-profit floor from a dry run's actual output,
// so the on-chain profit assertion still passes after any price
// movement between dry run and submission.
const tightenNumerator = 98
const tightenDenominator = 100

// Validator runs a CandidateTransaction through the node's simulation
// endpoint and, on success, rebuilds it with a minimum-profit floor
// tightened to the simulated output rather than the optimizer's
// pre-simulation estimate.
type Validator struct {
	sim     interfaces.SimulationClient
	builder interfaces.Builder
}

func NewValidator(sim interfaces.SimulationClient, builder interfaces.Builder) *Validator {
	return &Validator{sim: sim, builder: builder}
}

// ValidateAndTighten dry-runs tx; if the simulation fails or yields no
// net profit after simulated gas, it returns ok=false. Otherwise it
// rebuilds the transaction with MinProfit tightened to the simulated
// output and returns that rebuilt transaction for submission.
func (v *Validator) ValidateAndTighten(ctx context.Context, opp *types.Opportunity, tx *types.CandidateTransaction) (*types.CandidateTransaction, *types.DryRunResult, bool, error) {
	result, err := v.sim.DryRun(ctx, tx)
	if err != nil {
		return nil, nil, false, fmt.Errorf("builder: dry run: %w", err)
	}
	if !result.Success {
		return nil, result, false, nil
	}
	if result.ActualAmountOut == nil {
		return nil, result, false, nil
	}

	actualProfit := new(big.Int).Sub(result.ActualAmountOut, tx.AmountIn)
	netProfit := new(big.Int).Sub(actualProfit, result.NetGas())
	if netProfit.Sign() <= 0 {
		return nil, result, false, nil
	}

	tightened := new(big.Int).Mul(actualProfit, big.NewInt(tightenNumerator))
	tightened.Div(tightened, big.NewInt(tightenDenominator))
	if tightened.Sign() <= 0 {
		return nil, result, false, nil
	}

	rebuilt, err := v.builder.Build(ctx, opp, tightened)
	if err != nil {
		return nil, result, false, fmt.Errorf("builder: rebuild with tightened min profit: %w", err)
	}
	return rebuilt, result, true, nil
}
