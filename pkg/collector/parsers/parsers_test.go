package parsers

import (
	"testing"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(venue types.Venue) types.PoolKey {
	return types.PoolKey{Venue: venue, Pool: "pool-1", Base: "BASE", Quote: "QUOTE"}
}

func TestCLMMParser_ValidPayload(t *testing.T) {
	p := CLMMParser{}
	raw := []byte(`{"sqrt_price_x64":"18446744073709551616","liquidity":"500000","captured_at_unix_ms":1700000000000}`)

	snap, ok := p.Parse(raw, testKey(types.VenueCLMMA))
	require.True(t, ok)
	require.NotNil(t, snap)
	assert.Equal(t, types.PriceKindSqrtX64, snap.Kind)
	assert.Equal(t, "18446744073709551616", snap.SqrtPriceX64.String())
	assert.Equal(t, "500000", snap.Liquidity.String())
}

func TestCLMMParser_MissingSqrtPriceRejected(t *testing.T) {
	p := CLMMParser{}
	raw := []byte(`{"liquidity":"500000"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLMMA))
	assert.False(t, ok)
}

func TestCLMMParser_ZeroSqrtPriceRejected(t *testing.T) {
	p := CLMMParser{}
	raw := []byte(`{"sqrt_price_x64":"0"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLMMA))
	assert.False(t, ok)
}

func TestCLMMParser_NonNumericSqrtPriceRejected(t *testing.T) {
	p := CLMMParser{}
	raw := []byte(`{"sqrt_price_x64":"not-a-number"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLMMA))
	assert.False(t, ok)
}

func TestCLMMParser_MalformedJSONRejected(t *testing.T) {
	p := CLMMParser{}
	_, ok := p.Parse([]byte(`{not json`), testKey(types.VenueCLMMA))
	assert.False(t, ok)
}

func TestCLMMParser_MissingLiquidityDefaultsToZero(t *testing.T) {
	p := CLMMParser{}
	raw := []byte(`{"sqrt_price_x64":"12345"}`)

	snap, ok := p.Parse(raw, testKey(types.VenueFlashCLMMC))
	require.True(t, ok)
	assert.Equal(t, "0", snap.Liquidity.String())
}

func TestCLOBParser_ValidPayload(t *testing.T) {
	p := CLOBParser{}
	raw := []byte(`{"best_bid":"1.2345","best_ask":"1.2350","captured_at_unix_ms":1700000000000}`)

	snap, ok := p.Parse(raw, testKey(types.VenueCLOB))
	require.True(t, ok)
	assert.Equal(t, types.PriceKindBookTopOfBook, snap.Kind)
	bid, _ := snap.BestBid.Float64()
	ask, _ := snap.BestAsk.Float64()
	assert.InDelta(t, 1.2345, bid, 1e-9)
	assert.InDelta(t, 1.2350, ask, 1e-9)
}

func TestCLOBParser_CrossedBookRejected(t *testing.T) {
	p := CLOBParser{}
	raw := []byte(`{"best_bid":"2.0","best_ask":"1.0"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLOB))
	assert.False(t, ok)
}

func TestCLOBParser_MissingAskRejected(t *testing.T) {
	p := CLOBParser{}
	raw := []byte(`{"best_bid":"1.0"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLOB))
	assert.False(t, ok)
}

func TestCLOBParser_NegativeBidRejected(t *testing.T) {
	p := CLOBParser{}
	raw := []byte(`{"best_bid":"-1.0","best_ask":"1.0"}`)

	_, ok := p.Parse(raw, testKey(types.VenueCLOB))
	assert.False(t, ok)
}

func TestWeightedParser_ValidPayload(t *testing.T) {
	p := WeightedParser{}
	raw := []byte(`{"reserve_base":"1000000","reserve_quote":"2000000","weight_base":0.8,"weight_quote":0.2}`)

	snap, ok := p.Parse(raw, testKey(types.VenueWeighted))
	require.True(t, ok)
	assert.Equal(t, types.PriceKindReserves, snap.Kind)
	assert.Equal(t, "1000000", snap.ReserveBase.String())
	assert.Equal(t, "2000000", snap.ReserveQuote.String())
	assert.Equal(t, 0.8, snap.WeightBase)
	assert.Equal(t, 0.2, snap.WeightQuote)
}

func TestWeightedParser_WeightsOverOneRejected(t *testing.T) {
	p := WeightedParser{}
	raw := []byte(`{"reserve_base":"1","reserve_quote":"1","weight_base":0.9,"weight_quote":0.9}`)

	_, ok := p.Parse(raw, testKey(types.VenueWeighted))
	assert.False(t, ok)
}

func TestWeightedParser_MissingWeightRejected(t *testing.T) {
	p := WeightedParser{}
	raw := []byte(`{"reserve_base":"1","reserve_quote":"1","weight_base":0.5}`)

	_, ok := p.Parse(raw, testKey(types.VenueWeighted))
	assert.False(t, ok)
}

func TestWeightedParser_ZeroReserveRejected(t *testing.T) {
	p := WeightedParser{}
	raw := []byte(`{"reserve_base":"0","reserve_quote":"1","weight_base":0.5,"weight_quote":0.5}`)

	_, ok := p.Parse(raw, testKey(types.VenueWeighted))
	assert.False(t, ok)
}
