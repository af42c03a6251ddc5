// Package breaker implements the off-chain circuit breaker and gas
// monitor from the spec: a closed/open/half-open state machine gated
// on consecutive-failure count and cumulative loss, and a wallet
// balance gate. It is grounded on the teacher's metrics.ShutdownManager
// circuit-breaker state machine (CircuitClosed/Open/HalfOpen,
// failureCount, lastFailureTime, RecoveryTimeout), restructured to the
// spec's exact N/L/D thresholds and its "no loss-rate alerting" scope.
package breaker

import (
	"math/big"
	"sync"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
)

// Config holds the breaker's thresholds: N consecutive failures, L
// cumulative loss (native gas unit), and cooldown D.
type Config struct {
	MaxConsecutiveFailures int
	MaxCumulativeLoss      *big.Int
	Cooldown               time.Duration
}

// DefaultConfig matches CB_MAX_CONSECUTIVE_FAILURES / CB_MAX_CUMULATIVE_LOSS
// / CB_COOLDOWN_MS defaults used when configuration omits them.
func DefaultConfig() Config {
	return Config{
		MaxConsecutiveFailures: 5,
		MaxCumulativeLoss:      big.NewInt(1_000_000_000), // 1 native unit, smallest-denomination
		Cooldown:               30 * time.Second,
	}
}

// CircuitBreaker implements interfaces.CircuitBreaker. Closed -> Open
// when consecutive failures reach the threshold or cumulative loss
// reaches the threshold. Open -> HalfOpen once the cooldown elapses.
// HalfOpen -> Closed on the first success (counters reset); HalfOpen ->
// Open on the first failure (cooldown restarts).
type CircuitBreaker struct {
	mu sync.Mutex

	cfg Config

	state               interfaces.BreakerState
	consecutiveFailures int
	cumulativeLoss      *big.Int
	trippedUntil        time.Time
}

var _ interfaces.CircuitBreaker = (*CircuitBreaker)(nil)

// New returns a closed CircuitBreaker with the given configuration.
func New(cfg Config) *CircuitBreaker {
	if cfg.MaxCumulativeLoss == nil {
		cfg.MaxCumulativeLoss = DefaultConfig().MaxCumulativeLoss
	}
	return &CircuitBreaker{
		cfg:            cfg,
		state:          interfaces.BreakerClosed,
		cumulativeLoss: big.NewInt(0),
	}
}

// State returns the breaker's current phase. Calling State also applies
// the Open -> HalfOpen transition if the cooldown has elapsed, so
// callers observe a freshly-evaluated state without needing a separate
// tick.
func (b *CircuitBreaker) State() interfaces.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen(time.Now())
	return b.state
}

// AllowSubmission reports whether the orchestrator may submit a
// transaction right now. A tripped (open) breaker suppresses all
// submissions until trippedUntil elapses, at which point it becomes
// half-open and allows exactly a probing flow of submissions through
// (the orchestrator still serializes at most one transaction in
// flight per tick, so "allow" here just means "do not suppress").
func (b *CircuitBreaker) AllowSubmission(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen(now)
	return b.state != interfaces.BreakerOpen
}

// RecordSuccess resets the failure counters. In the half-open state it
// closes the breaker; in the closed state it simply keeps the counters
// at zero.
func (b *CircuitBreaker) RecordSuccess(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0
	b.cumulativeLoss = big.NewInt(0)
	b.state = interfaces.BreakerClosed
}

// RecordFailure increments the consecutive-failure count and adds to
// cumulative loss. It trips the breaker open (and restarts the cooldown
// if already half-open) once either threshold is reached.
func (b *CircuitBreaker) RecordFailure(now time.Time, loss *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	if loss != nil && loss.Sign() > 0 {
		b.cumulativeLoss.Add(b.cumulativeLoss, loss)
	}

	tripped := b.consecutiveFailures >= b.cfg.MaxConsecutiveFailures
	if !tripped && b.cfg.MaxCumulativeLoss != nil && b.cfg.MaxCumulativeLoss.Sign() > 0 {
		tripped = b.cumulativeLoss.Cmp(b.cfg.MaxCumulativeLoss) >= 0
	}

	if b.state == interfaces.BreakerHalfOpen || tripped {
		b.state = interfaces.BreakerOpen
		b.trippedUntil = now.Add(b.cfg.Cooldown)
	}
}

// maybeHalfOpen must be called with mu held.
func (b *CircuitBreaker) maybeHalfOpen(now time.Time) {
	if b.state == interfaces.BreakerOpen && !now.Before(b.trippedUntil) {
		b.state = interfaces.BreakerHalfOpen
	}
}
