package clmma

import (
	"context"
	"math/big"
	"testing"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/onchain"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBinding struct {
	output    *big.Int
	remainder *big.Int
	debt      *big.Int
}

func (m *mockBinding) SwapExactIn(ctx context.Context, pool types.PoolID, aToB bool, input, limit *big.Int) (*big.Int, *big.Int, error) {
	return m.output, m.remainder, nil
}

func (m *mockBinding) FlashSwap(ctx context.Context, pool types.PoolID, aToB bool, amount *big.Int) (*big.Int, *big.Int, uint64, error) {
	return m.output, m.debt, 42, nil
}

func (m *mockBinding) RepayFlash(ctx context.Context, pool types.PoolID, handle uint64, repayment *big.Int) error {
	return nil
}

func TestAdapter_ImplementsInterfaces(t *testing.T) {
	var _ interfaces.FlashVenueAdapter = New(&mockBinding{})
}

func TestAdapter_SwapAToB(t *testing.T) {
	binding := &mockBinding{output: big.NewInt(1000), remainder: big.NewInt(0)}
	a := New(binding)

	out, dust, err := a.SwapAToB(context.Background(), "pool-1", big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), out)
	assert.Nil(t, dust)
}

func TestAdapter_FlashSwapRoundTrip(t *testing.T) {
	binding := &mockBinding{output: big.NewInt(900), debt: big.NewInt(500)}
	a := New(binding)

	received, receipt, err := a.FlashSwapAToB(context.Background(), "pool-1", big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), received)

	assert.Equal(t, uint64(500), onchain.RepaymentAmount(receipt))

	err = a.RepayFlashSwap(context.Background(), "pool-1", big.NewInt(500), receipt)
	require.NoError(t, err)
}

func TestAdapter_RepayRejectsForeignReceipt(t *testing.T) {
	a := New(&mockBinding{})
	err := a.RepayFlashSwap(context.Background(), "pool-1", big.NewInt(1), foreignReceipt{})
	assert.Error(t, err)
}

type foreignReceipt struct{}

func (foreignReceipt) Venue() string { return "other" }

func TestAdapter_PriceLimits(t *testing.T) {
	a := New(&mockBinding{})
	assert.Equal(t, 0, a.MinSqrtPrice().Cmp(minSqrtPriceX64))
	assert.Equal(t, 0, a.MaxSqrtPrice().Cmp(maxSqrtPriceX64))
}

func TestSettleDust(t *testing.T) {
	a := New(&mockBinding{})
	assert.Nil(t, a.SettleDust(big.NewInt(0)))
	assert.Equal(t, big.NewInt(1), a.SettleDust(big.NewInt(1)))
}
