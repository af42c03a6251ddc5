package interfaces

import (
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// BreakerState is the circuit breaker's current phase.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker suppresses submissions after repeated failures or
// excessive cumulative loss, recovering through a half-open probe.
type CircuitBreaker interface {
	State() BreakerState
	AllowSubmission(now time.Time) bool
	RecordSuccess(now time.Time)
	RecordFailure(now time.Time, loss *big.Int)
}

// GasMonitor tracks wallet balance and gates submission on a minimum
// threshold.
type GasMonitor interface {
	Balance() *big.Int
	AboveMinimum() bool
	Refresh(now time.Time, balance *big.Int)
}

// OpportunityQueue ranks Opportunities by estimated profit, highest
// first.
type OpportunityQueue interface {
	Push(opp *types.Opportunity) error
	Pop() (*types.Opportunity, error)
	Peek() (*types.Opportunity, error)
	Size() int
	Clear()
}
