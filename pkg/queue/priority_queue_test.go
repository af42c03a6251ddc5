package queue

import (
	"math/big"
	"testing"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpportunity(tag string, profit int64, discoveredAt time.Time) *types.Opportunity {
	return &types.Opportunity{
		Tag:                types.StrategyTag(tag),
		Legs:               []types.Leg{{Venue: types.VenueCLMMA, Pool: "pool-a"}},
		InputAsset:         "USDC",
		AmountIn:           big.NewInt(1_000_000),
		EstimatedAmountOut: big.NewInt(1_000_500),
		EstimatedProfit:    big.NewInt(profit),
		DiscoveredAt:       discoveredAt,
	}
}

func TestOpportunityQueue_BasicOperations(t *testing.T) {
	q := NewOpportunityQueueImpl(10)

	assert.Equal(t, 0, q.Size())

	_, err := q.Peek()
	assert.Error(t, err)
	_, err = q.Pop()
	assert.Error(t, err)

	now := time.Now()
	opp1 := testOpportunity("two_hop_a_b", 100, now)
	opp2 := testOpportunity("two_hop_b_a", 300, now.Add(time.Second))
	opp3 := testOpportunity("tri_hop_a_b_c", 200, now.Add(2*time.Second))

	require.NoError(t, q.Push(opp1))
	require.NoError(t, q.Push(opp2))
	require.NoError(t, q.Push(opp3))
	assert.Equal(t, 3, q.Size())

	peeked, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, opp2.Tag, peeked.Tag)
	assert.Equal(t, 3, q.Size())

	popped, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, opp2.Tag, popped.Tag)

	popped, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, opp3.Tag, popped.Tag)

	popped, err = q.Pop()
	require.NoError(t, err)
	assert.Equal(t, opp1.Tag, popped.Tag)

	assert.Equal(t, 0, q.Size())
}

func TestOpportunityQueue_TieBreakByDiscoveredAt(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	now := time.Now()

	older := testOpportunity("two_hop_a_b", 100, now)
	newer := testOpportunity("two_hop_b_a", 100, now.Add(time.Second))

	require.NoError(t, q.Push(newer))
	require.NoError(t, q.Push(older))

	first, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, older.Tag, first.Tag, "equal profit should break ties by earlier discovery")
}

func TestOpportunityQueue_RejectsDuplicate(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	opp := testOpportunity("two_hop_a_b", 100, time.Now())

	require.NoError(t, q.Push(opp))
	err := q.Push(opp)
	assert.Error(t, err)
	assert.Equal(t, 1, q.Size())
}

func TestOpportunityQueue_EvictsOldestAtCapacity(t *testing.T) {
	q := NewOpportunityQueueImpl(2)
	now := time.Now()

	opp1 := testOpportunity("two_hop_a_b", 100, now)
	opp2 := testOpportunity("two_hop_b_a", 100, now.Add(time.Second))
	opp3 := testOpportunity("tri_hop_a_b_c", 100, now.Add(2*time.Second))

	require.NoError(t, q.Push(opp1))
	require.NoError(t, q.Push(opp2))
	require.NoError(t, q.Push(opp3))

	assert.Equal(t, 2, q.Size())
	stats := q.Stats()
	assert.EqualValues(t, 1, stats.EvictedCount)
}

func TestOpportunityQueue_Clear(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	require.NoError(t, q.Push(testOpportunity("two_hop_a_b", 100, time.Now())))
	q.Clear()
	assert.Equal(t, 0, q.Size())
}

func TestOpportunityQueue_EvictExpired(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	now := time.Now()

	stale := testOpportunity("two_hop_a_b", 100, now.Add(-2*types.OpportunityTTL))
	fresh := testOpportunity("two_hop_b_a", 50, now)

	require.NoError(t, q.Push(stale))
	require.NoError(t, q.Push(fresh))

	evicted := q.EvictExpired(now)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, q.Size())

	remaining, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, fresh.Tag, remaining.Tag)
}
