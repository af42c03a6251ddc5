package breaker

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGasMonitor_AboveMinimum(t *testing.T) {
	gm := NewGasMonitor(big.NewInt(100))

	assert.False(t, gm.AboveMinimum(), "unrefreshed monitor must not report above minimum")

	gm.Refresh(time.Now(), big.NewInt(50))
	assert.False(t, gm.AboveMinimum())

	gm.Refresh(time.Now(), big.NewInt(150))
	assert.True(t, gm.AboveMinimum())
	assert.Equal(t, big.NewInt(150), gm.Balance())
}

func TestGasMonitor_DefaultMinimum(t *testing.T) {
	gm := NewGasMonitor(nil)
	gm.Refresh(time.Now(), new(big.Int).Add(DefaultMinGasBalance, big.NewInt(1)))
	assert.True(t, gm.AboveMinimum())
}
