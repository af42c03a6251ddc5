package strategies

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

// mockVenue is a deterministic flash-capable venue used to drive
// end-to-end-style tests of Execute without real chain bindings.
type mockVenue struct {
	venue types.Venue
	rate  float64 // output units per input unit for SwapAToB
}

func (m *mockVenue) Venue() types.Venue { return m.venue }

func (m *mockVenue) SwapAToB(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	return scaled(input, m.rate), nil, nil
}

func (m *mockVenue) SwapBToA(ctx context.Context, pool types.PoolID, input *big.Int) (*big.Int, *big.Int, error) {
	return scaled(input, 1/m.rate), nil, nil
}

func (m *mockVenue) MinSqrtPrice() *big.Int { return nil }
func (m *mockVenue) MaxSqrtPrice() *big.Int { return nil }

func (m *mockVenue) SettleDust(remainder *big.Int) *big.Int { return nil }

type mockReceipt struct {
	venue     types.Venue
	requested *big.Int
}

func (r mockReceipt) Venue() string           { return string(r.venue) }
func (r mockReceipt) RequestedAmount() uint64 { return r.requested.Uint64() }

type mockFlashVenue struct {
	mockVenue
}

func (m *mockFlashVenue) FlashSwapAToB(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error) {
	return scaled(amount, m.rate), mockReceipt{venue: m.venue, requested: amount}, nil
}

func (m *mockFlashVenue) FlashSwapBToA(ctx context.Context, pool types.PoolID, amount *big.Int) (*big.Int, onchain.FlashReceipt, error) {
	return scaled(amount, 1/m.rate), mockReceipt{venue: m.venue, requested: amount}, nil
}

func (m *mockFlashVenue) RepayFlashSwap(ctx context.Context, pool types.PoolID, repayment *big.Int, receipt onchain.FlashReceipt) error {
	return nil
}

func scaled(input *big.Int, rate float64) *big.Int {
	f := new(big.Float).SetInt(input)
	f.Mul(f, big.NewFloat(rate))
	out, _ := f.Int(nil)
	return out
}

func TestExecute_ProfitableTwoHopSucceeds(t *testing.T) {
	tmpl := &Template{
		Tag: "arb_clmm_a_to_clmm_b",
		Legs: []types.Leg{
			{Venue: types.VenueCLMMA},
			{Venue: types.VenueCLMMB},
		},
	}

	source := &mockFlashVenue{mockVenue{venue: types.VenueCLMMA, rate: 1.0}}
	sink := &mockSellOnly{mockVenue: mockVenue{venue: types.VenueCLMMB, rate: 1.01}}

	p := Params{
		Capability: &onchain.Capability{},
		Pause:      onchain.NewPauseSwitch(),
		Adapters: map[types.Venue]interfaces.VenueAdapter{
			types.VenueCLMMA: source,
			types.VenueCLMMB: sink,
		},
		Pools:     []types.PoolID{"pool-a", "pool-b"},
		AmountIn:  1_000_000_000,
		MinProfit: 1_000_000,
	}

	stamp, err := Execute(context.Background(), tmpl, p)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stamp.Profit(), uint64(1_000_000))
}

func TestExecute_ZeroSpreadReverts(t *testing.T) {
	tmpl := &Template{
		Tag: "arb_clmm_a_to_clmm_b",
		Legs: []types.Leg{
			{Venue: types.VenueCLMMA},
			{Venue: types.VenueCLMMB},
		},
	}

	source := &mockFlashVenue{mockVenue{venue: types.VenueCLMMA, rate: 1.0}}
	sink := &mockSellOnly{mockVenue: mockVenue{venue: types.VenueCLMMB, rate: 1.0}}

	p := Params{
		Capability: &onchain.Capability{},
		Pause:      onchain.NewPauseSwitch(),
		Adapters: map[types.Venue]interfaces.VenueAdapter{
			types.VenueCLMMA: source,
			types.VenueCLMMB: sink,
		},
		Pools:     []types.PoolID{"pool-a", "pool-b"},
		AmountIn:  1_000_000_000,
		MinProfit: 1,
	}

	_, err := Execute(context.Background(), tmpl, p)
	assert.ErrorIs(t, err, onchain.ErrNotProfitable)
}

func TestExecute_PausedFailsFast(t *testing.T) {
	tmpl := &Template{
		Tag:  "arb_clmm_a_to_clmm_b",
		Legs: []types.Leg{{Venue: types.VenueCLMMA}, {Venue: types.VenueCLMMB}},
	}
	pause := onchain.NewPauseSwitch()
	cap := &onchain.Capability{}
	require.NoError(t, pause.Pause(cap))

	p := Params{
		Capability: cap,
		Pause:      pause,
		Adapters:   map[types.Venue]interfaces.VenueAdapter{},
		Pools:      []types.PoolID{"pool-a", "pool-b"},
		AmountIn:   1000,
		MinProfit:  1,
	}

	_, err := Execute(context.Background(), tmpl, p)
	assert.ErrorIs(t, err, onchain.ErrPaused)
}

func TestExecute_ZeroAmountRejected(t *testing.T) {
	tmpl := &Template{Tag: "arb_clmm_a_to_clmm_b", Legs: []types.Leg{{Venue: types.VenueCLMMA}, {Venue: types.VenueCLMMB}}}
	p := Params{
		Capability: &onchain.Capability{},
		Pause:      onchain.NewPauseSwitch(),
		AmountIn:   0,
	}
	_, err := Execute(context.Background(), tmpl, p)
	assert.ErrorIs(t, err, onchain.ErrZeroAmount)
}

// mockSellOnly implements interfaces.VenueAdapter but not
// FlashVenueAdapter, mirroring the weighted-AMM's sell-leg-only role.
type mockSellOnly struct {
	mockVenue
}
