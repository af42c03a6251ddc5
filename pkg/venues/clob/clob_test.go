package clob

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
	output        *big.Int
	calledFeeCoin types.PoolID
}

func (m *mockBinding) PlaceMarketOrder(ctx context.Context, pool types.PoolID, aToB bool, input *big.Int) (*big.Int, *big.Int, error) {
	return m.output, big.NewInt(0), nil
}

func (m *mockBinding) FlashBorrowBase(ctx context.Context, pool types.PoolID, feeCoin types.PoolID, amount *big.Int) (*big.Int, uint64, error) {
	m.calledFeeCoin = feeCoin
	return m.output, 9, nil
}

func (m *mockBinding) FlashReturnBase(ctx context.Context, pool types.PoolID, handle uint64, coin *big.Int) error {
	return nil
}

func TestAdapter_ImplementsInterfaces(t *testing.T) {
	var _ interfaces.BaseFlashVenueAdapter = New(&mockBinding{}, "fee-coin")
}

func TestAdapter_NoTickRange(t *testing.T) {
	a := New(&mockBinding{}, "fee-coin")
	assert.Nil(t, a.MinSqrtPrice())
	assert.Nil(t, a.MaxSqrtPrice())
}

func TestAdapter_FlashBorrowBasePassesFeeCoin(t *testing.T) {
	binding := &mockBinding{output: big.NewInt(100)}
	a := New(binding, "deep-fee-coin")

	_, receipt, err := a.FlashBorrowBase(context.Background(), "pool-1", big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, types.PoolID("deep-fee-coin"), binding.calledFeeCoin)
	assert.Equal(t, uint64(50), onchain.RepaymentAmount(receipt))
}
