// Package queue ranks scanner-discovered opportunities by estimated
// profit so the orchestrator always builds a transaction for the most
// profitable candidate first. Grounded on the teacher's
// container/heap-based transaction priority queue, generalized from
// gas-price ordering to profit ordering and from transaction hashes to
// opportunity keys.
package queue

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

const (
	DefaultMaxCapacity = 1000
	DefaultMaxAge      = types.OpportunityTTL
)

func key(o *types.Opportunity) string {
	return fmt.Sprintf("%s|%v", o.Tag, o.Legs)
}

// opportunityHeap implements heap.Interface as a max-heap on estimated
// profit.
type opportunityHeap []*types.Opportunity

func (h opportunityHeap) Len() int { return len(h) }

func (h opportunityHeap) Less(i, j int) bool {
	cmp := h[i].EstimatedProfit.Cmp(h[j].EstimatedProfit)
	if cmp != 0 {
		return cmp > 0
	}
	return h[i].DiscoveredAt.Before(h[j].DiscoveredAt)
}

func (h opportunityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *opportunityHeap) Push(x interface{}) {
	*h = append(*h, x.(*types.Opportunity))
}

func (h *opportunityHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// OpportunityQueueImpl implements interfaces.OpportunityQueue.
type OpportunityQueueImpl struct {
	mu          sync.RWMutex
	heap        opportunityHeap
	index       map[string]int
	maxCapacity int

	stats Stats
}

// Stats reports queue utilization.
type Stats struct {
	CurrentSize  int
	MaxSize      int
	EvictedCount int64
	LastEviction time.Time
}

// NewOpportunityQueue creates a queue bounded at DefaultMaxCapacity.
func NewOpportunityQueue() interfaces.OpportunityQueue {
	return NewOpportunityQueueImpl(DefaultMaxCapacity)
}

// NewOpportunityQueueImpl creates a queue bounded at capacity, returning
// the concrete type so a Manager can wrap it for capacity/age
// enforcement.
func NewOpportunityQueueImpl(capacity int) *OpportunityQueueImpl {
	h := opportunityHeap{}
	heap.Init(&h)
	return &OpportunityQueueImpl{
		heap:        h,
		index:       make(map[string]int),
		maxCapacity: capacity,
		stats:       Stats{MaxSize: capacity},
	}
}

// Push adds an opportunity, evicting the oldest entry if at capacity.
func (q *OpportunityQueueImpl) Push(opp *types.Opportunity) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := key(opp)
	if _, exists := q.index[k]; exists {
		return fmt.Errorf("queue: opportunity %s already queued", k)
	}

	if q.heap.Len() >= q.maxCapacity {
		if err := q.evictOldestLocked(); err != nil {
			return fmt.Errorf("queue: failed to evict to make room: %w", err)
		}
	}

	heap.Push(&q.heap, opp)
	q.rebuildIndexLocked()
	q.stats.CurrentSize = q.heap.Len()
	return nil
}

// Pop removes and returns the highest-profit opportunity.
func (q *OpportunityQueueImpl) Pop() (*types.Opportunity, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.heap.Len() == 0 {
		return nil, fmt.Errorf("queue: empty")
	}
	opp := heap.Pop(&q.heap).(*types.Opportunity)
	delete(q.index, key(opp))
	q.rebuildIndexLocked()
	q.stats.CurrentSize = q.heap.Len()
	return opp, nil
}

// Peek returns the highest-profit opportunity without removing it.
func (q *OpportunityQueueImpl) Peek() (*types.Opportunity, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.heap.Len() == 0 {
		return nil, fmt.Errorf("queue: empty")
	}
	return q.heap[0], nil
}

// Size returns the current number of queued opportunities.
func (q *OpportunityQueueImpl) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.heap.Len()
}

// Clear empties the queue.
func (q *OpportunityQueueImpl) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.heap = q.heap[:0]
	q.index = make(map[string]int)
	q.stats.CurrentSize = 0
}

// EvictExpired drops every queued opportunity older than
// types.OpportunityTTL relative to now.
func (q *OpportunityQueueImpl) EvictExpired(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	var toEvict []string
	for _, opp := range q.heap {
		if opp.IsExpired(now) {
			toEvict = append(toEvict, key(opp))
		}
	}
	for _, k := range toEvict {
		q.removeByKeyLocked(k)
	}
	if len(toEvict) > 0 {
		q.stats.EvictedCount += int64(len(toEvict))
		q.stats.LastEviction = now
	}
	return len(toEvict)
}

// Stats returns a snapshot of queue utilization.
func (q *OpportunityQueueImpl) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()
	s := q.stats
	s.CurrentSize = q.heap.Len()
	return s
}

func (q *OpportunityQueueImpl) removeByKeyLocked(k string) bool {
	idx, exists := q.index[k]
	if !exists || idx >= q.heap.Len() {
		return false
	}
	heap.Remove(&q.heap, idx)
	delete(q.index, k)
	q.rebuildIndexLocked()
	q.stats.CurrentSize = q.heap.Len()
	return true
}

func (q *OpportunityQueueImpl) evictOldestLocked() error {
	if q.heap.Len() == 0 {
		return fmt.Errorf("cannot evict from empty queue")
	}
	oldestIdx := 0
	oldest := q.heap[0].DiscoveredAt
	for i, opp := range q.heap {
		if opp.DiscoveredAt.Before(oldest) {
			oldest = opp.DiscoveredAt
			oldestIdx = i
		}
	}
	evicted := q.heap[oldestIdx]
	heap.Remove(&q.heap, oldestIdx)
	delete(q.index, key(evicted))
	q.rebuildIndexLocked()
	q.stats.EvictedCount++
	q.stats.LastEviction = time.Now()
	return nil
}

func (q *OpportunityQueueImpl) rebuildIndexLocked() {
	q.index = make(map[string]int, len(q.heap))
	for i, opp := range q.heap {
		q.index[key(opp)] = i
	}
}
