package queue

import (
	"testing"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ManageCapacity(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	m := NewManager(q)
	m.SetMaxCapacity(2)

	now := time.Now()
	require.NoError(t, q.Push(testOpportunity("two_hop_a_b", 300, now)))
	require.NoError(t, q.Push(testOpportunity("two_hop_b_a", 200, now.Add(time.Second))))
	require.NoError(t, q.Push(testOpportunity("tri_hop_a_b_c", 100, now.Add(2*time.Second))))

	assert.Equal(t, 3, q.Size())

	evicted := m.ManageCapacity()
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, q.Size())

	remaining, err := q.Peek()
	require.NoError(t, err)
	assert.Equal(t, types.StrategyTag("two_hop_a_b"), remaining.Tag)
}

func TestManager_EvictOldTransactions(t *testing.T) {
	q := NewOpportunityQueueImpl(10)
	m := NewManager(q)

	now := time.Now()
	require.NoError(t, q.Push(testOpportunity("two_hop_a_b", 100, now.Add(-2*types.OpportunityTTL))))
	require.NoError(t, q.Push(testOpportunity("two_hop_b_a", 50, now)))

	evicted := m.EvictOldTransactions(now)
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, q.Size())
}

func TestManager_GetQueueStats(t *testing.T) {
	q := NewOpportunityQueueImpl(5)
	m := NewManager(q)

	require.NoError(t, q.Push(testOpportunity("two_hop_a_b", 100, time.Now())))

	stats := m.GetQueueStats()
	assert.Equal(t, 1, stats.CurrentSize)
	assert.Equal(t, 5, stats.MaxSize)
}

func TestManager_SetMaxAge(t *testing.T) {
	q := NewOpportunityQueueImpl(5)
	m := NewManager(q)

	m.SetMaxAge(time.Minute)
	assert.Equal(t, time.Minute, m.maxAge)
}
