package optimizer

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weightedSnapshot(venue types.Venue, pool types.PoolID, base, quote types.AssetType, reserveBase, reserveQuote int64) *types.PoolSnapshot {
	return &types.PoolSnapshot{
		Key:          types.PoolKey{Venue: venue, Pool: pool, Base: base, Quote: quote},
		Kind:         types.PriceKindReserves,
		ReserveBase:  big.NewInt(reserveBase),
		ReserveQuote: big.NewInt(reserveQuote),
		WeightBase:   0.5,
		WeightQuote:  0.5,
		CapturedAt:   time.Now(),
	}
}

func TestOptimize_FindsProfitableAmount(t *testing.T) {
	o := New()

	// Two weighted pools quoting A/B with a price gap: pool1 is cheap in A,
	// pool2 is rich in B, so routing A->B on pool1 then B->A on pool2
	// should yield a net-positive amount somewhere in the search range.
	pool1 := weightedSnapshot(types.VenueWeighted, "p1", "A", "B", 1_000_000, 1_000_000)
	pool2 := weightedSnapshot(types.VenueWeighted, "p2", "A", "B", 1_200_000, 900_000)

	opp := &types.Opportunity{
		Tag: "arb_weighted_to_weighted",
		Legs: []types.Leg{
			{Venue: types.VenueWeighted, Pool: "p1", Reversed: false},
			{Venue: types.VenueWeighted, Pool: "p2", Reversed: true},
		},
		SourceLegIndex:     0,
		InputAsset:         "A",
		AmountIn:           big.NewInt(100),
		EstimatedAmountOut: big.NewInt(100),
		EstimatedProfit:    big.NewInt(0),
		DiscoveredAt:       time.Now(),
	}

	snapshots := map[types.PoolKey]*types.PoolSnapshot{
		pool1.Key: pool1,
		pool2.Key: pool2,
	}

	refined, ok, err := o.Optimize(context.Background(), opp, snapshots, big.NewInt(0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, refined.AmountIn.Sign() > 0)
	assert.True(t, refined.EstimatedProfit.Sign() > 0)
}

func TestOptimize_RejectsWhenGasExceedsProfit(t *testing.T) {
	o := New()

	pool1 := weightedSnapshot(types.VenueWeighted, "p1", "A", "B", 1_000_000, 1_000_000)
	pool2 := weightedSnapshot(types.VenueWeighted, "p2", "A", "B", 1_200_000, 900_000)

	opp := &types.Opportunity{
		Tag:                "arb_weighted_to_weighted",
		Legs:               []types.Leg{{Venue: types.VenueWeighted, Pool: "p1"}, {Venue: types.VenueWeighted, Pool: "p2", Reversed: true}},
		SourceLegIndex:     0,
		InputAsset:         "A",
		AmountIn:           big.NewInt(100),
		EstimatedAmountOut: big.NewInt(100),
		EstimatedProfit:    big.NewInt(0),
		DiscoveredAt:       time.Now(),
	}

	snapshots := map[types.PoolKey]*types.PoolSnapshot{
		pool1.Key: pool1,
		pool2.Key: pool2,
	}

	_, ok, err := o.Optimize(context.Background(), opp, snapshots, big.NewInt(1_000_000_000))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOptimize_MissingSnapshotErrors(t *testing.T) {
	o := New()
	opp := &types.Opportunity{
		Tag:        "arb_weighted_to_weighted",
		Legs:       []types.Leg{{Venue: types.VenueWeighted, Pool: "missing"}},
		InputAsset: "A",
		AmountIn:   big.NewInt(100),
	}

	_, ok, err := o.Optimize(context.Background(), opp, map[types.PoolKey]*types.PoolSnapshot{}, big.NewInt(0))
	assert.False(t, ok)
	assert.Error(t, err)
}
