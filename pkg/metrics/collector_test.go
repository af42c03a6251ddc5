package metrics

import (
	"math/big"
	"testing"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func newTestCollector() *Collector {
	return NewCollectorWithRegistry(DefaultConfig(), prometheus.NewRegistry())
}

func TestRecordSubmission_TracksSuccessRate(t *testing.T) {
	c := newTestCollector()

	c.RecordSubmission("arb_clmm_a_to_clmm_b", &types.SubmissionOutcome{
		Success: true, RealizedProfit: big.NewInt(100), GasCost: big.NewInt(10),
	}, 5*time.Millisecond)
	c.RecordSubmission("arb_clmm_a_to_clmm_b", &types.SubmissionOutcome{
		Success: false, RealizedProfit: big.NewInt(0), GasCost: big.NewInt(5),
	}, 3*time.Millisecond)

	w := c.PerformanceWindow(50)
	assert.Equal(t, 2, w.TotalSubmissions)
	assert.Equal(t, 1, w.Successful)
	assert.Equal(t, 1, w.Failed)
	assert.Equal(t, 0.5, w.SuccessRate)
	assert.Equal(t, "50.00%", w.SuccessRatePercent)
	assert.Equal(t, big.NewInt(85), w.NetProfit) // 90 - 5
}

func TestPerformanceWindow_EmptyIsZeroValued(t *testing.T) {
	c := newTestCollector()
	w := c.PerformanceWindow(50)
	assert.Equal(t, 0, w.TotalSubmissions)
	assert.Equal(t, big.NewInt(0), w.AverageProfit)
}

func TestLatencyWindow_ComputesPercentiles(t *testing.T) {
	c := newTestCollector()
	for _, d := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		c.RecordLatency("dry_run", d)
	}

	lw := c.LatencyWindow("dry_run", 50)
	assert.Equal(t, 3, lw.SampleCount)
	assert.Equal(t, 10*time.Millisecond, lw.Min)
	assert.Equal(t, 30*time.Millisecond, lw.Max)
}

func TestRecordOpportunity_IncrementsCounter(t *testing.T) {
	c := newTestCollector()
	c.RecordOpportunity(&types.Opportunity{Tag: "arb_clob_to_weighted"})
	assert.Len(t, c.opportunities, 1)
}
