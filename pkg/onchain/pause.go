package onchain

import (
	"fmt"
	"sync/atomic"
)

// PauseSwitch is a shared, always-visible object carrying a single
// boolean. Only the holder of a Capability may toggle it.
type PauseSwitch struct {
	paused atomic.Bool
}

// NewPauseSwitch returns a PauseSwitch in the unpaused state.
func NewPauseSwitch() *PauseSwitch {
	return &PauseSwitch{}
}

// Pause sets the switch, gated on presenting a Capability.
func (p *PauseSwitch) Pause(cap *Capability) error {
	if cap == nil {
		return fmt.Errorf("onchain: pause requires a capability")
	}
	p.paused.Store(true)
	return nil
}

// Unpause clears the switch, gated on presenting a Capability.
func (p *PauseSwitch) Unpause(cap *Capability) error {
	if cap == nil {
		return fmt.Errorf("onchain: unpause requires a capability")
	}
	p.paused.Store(false)
	return nil
}

// IsPaused reports the current state.
func (p *PauseSwitch) IsPaused() bool {
	return p.paused.Load()
}

// AssertNotPaused is the guard every strategy entry begins with. It
// fails fast, before any side effect, when the switch is set.
func (p *PauseSwitch) AssertNotPaused() error {
	if p.paused.Load() {
		return ErrPaused
	}
	return nil
}
