package onchain

import (
	"fmt"
	"sync"
)

// Capability is the authority-granting handle required by every strategy
// entry and by PauseSwitch.Pause/Unpause. It has no exported field or
// method that would let a caller copy it into a shared structure — the
// nearest idiomatic Go analogue to a non-storable, non-copyable
// linear-typed object. The only way to move it between holders is
// TransferCapability.
type Capability struct {
	id uint64
}

// ID returns an opaque identifier for logging/metrics; it carries no
// authority on its own.
func (c *Capability) ID() uint64 {
	if c == nil {
		return 0
	}
	return c.id
}

// Minter mints at most one Capability. A deployment constructs exactly
// one Minter at wiring time (mirroring "minted exactly once at
// deployment"); any second call to Mint is a programmer error.
type Minter struct {
	mu     sync.Mutex
	minted bool
	nextID uint64
}

// NewMinter returns a fresh Minter, ready to mint its single Capability.
func NewMinter() *Minter {
	return &Minter{nextID: 1}
}

// Mint produces the deployment's Capability. It returns an error on any
// call after the first, rather than panicking, since wiring code is
// expected to surface the failure.
func (m *Minter) Mint() (*Capability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.minted {
		return nil, fmt.Errorf("onchain: capability already minted")
	}
	m.minted = true
	c := &Capability{id: m.nextID}
	m.nextID++
	return c, nil
}

// TransferCapability moves a Capability from one holder variable to
// another by value, the module-scoped helper analogue: it consumes the
// source pointer's validity by clearing it, so the caller cannot retain
// two live references to the same capability.
func TransferCapability(from **Capability) *Capability {
	c := *from
	*from = nil
	return c
}
