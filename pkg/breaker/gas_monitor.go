package breaker

import (
	"math/big"
	"sync"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
)

// DefaultMinGasBalance matches MIN_GAS_BALANCE's documented default of
// 0.1 native units, expressed in the smallest denomination.
var DefaultMinGasBalance = big.NewInt(100_000_000)

// GasMonitor implements interfaces.GasMonitor. It holds the last
// observed wallet balance and compares it against a configured floor;
// Refresh is called by a 10s poller (spec 4.8) with a freshly-read
// balance.
type GasMonitor struct {
	mu      sync.RWMutex
	minimum *big.Int
	balance *big.Int
	at      time.Time
}

var _ interfaces.GasMonitor = (*GasMonitor)(nil)

// NewGasMonitor returns a GasMonitor with an unknown (zero) balance
// until the first Refresh.
func NewGasMonitor(minimum *big.Int) *GasMonitor {
	if minimum == nil {
		minimum = DefaultMinGasBalance
	}
	return &GasMonitor{minimum: minimum, balance: big.NewInt(0)}
}

func (g *GasMonitor) Balance() *big.Int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return new(big.Int).Set(g.balance)
}

// AboveMinimum reports whether the last-observed balance is at or above
// the configured floor. A never-refreshed monitor reports false so the
// orchestrator does not submit against an unknown balance.
func (g *GasMonitor) AboveMinimum() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.at.IsZero() {
		return false
	}
	return g.balance.Cmp(g.minimum) >= 0
}

func (g *GasMonitor) Refresh(now time.Time, balance *big.Int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if balance == nil {
		balance = big.NewInt(0)
	}
	g.balance = new(big.Int).Set(balance)
	g.at = now
}
