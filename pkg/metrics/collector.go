// Package metrics aggregates submission outcomes, detected
// opportunities, and per-operation latencies into rolling-window
// statistics and Prometheus series. Grounded on the teacher's
// pkg/metrics.Collector (trade/opportunity ring buffers, per-window
// success rate and profit percentile calculations, a
// promauto-registered PrometheusMetrics struct), retargeted from
// TradeResult/MEVOpportunity to types.SubmissionOutcome/types.Opportunity
// and renamed from the mev_ metric namespace to arb_.
package metrics

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Outcome pairs a submission's result with the strategy tag and
// wall-clock latency of the tick that produced it.
type Outcome struct {
	Tag       types.StrategyTag
	Result    *types.SubmissionOutcome
	Latency   time.Duration
	Timestamp time.Time
}

// LatencyRecord is one timestamped latency sample for a named
// operation (e.g. "dry_run", "submit", "optimize").
type LatencyRecord struct {
	Timestamp time.Time
	Duration  time.Duration
}

// Config bounds the collector's retained history.
type Config struct {
	MaxOutcomes      int
	MaxOpportunities int
	MaxLatencies     int
}

func DefaultConfig() Config {
	return Config{MaxOutcomes: 10000, MaxOpportunities: 10000, MaxLatencies: 10000}
}

// Collector implements rolling-window performance accounting over the
// pipeline's submissions, opportunities, and stage latencies.
type Collector struct {
	mu sync.RWMutex

	cfg Config

	outcomes      []Outcome
	opportunities []*types.Opportunity
	latencies     map[string][]LatencyRecord

	prom *prometheusMetrics
}

type prometheusMetrics struct {
	submissionsTotal    prometheus.Counter
	profitableTotal     prometheus.Counter
	realizedProfit      prometheus.Gauge
	submissionLatency   prometheus.Histogram
	opportunitiesByTag  *prometheus.CounterVec
	submissionsByTag    *prometheus.CounterVec
	profitByTag         *prometheus.GaugeVec
	stageLatency        *prometheus.HistogramVec
	queueSize           prometheus.Gauge
	breakerOpen         prometheus.Gauge
	successRateByWindow *prometheus.GaugeVec
}

// NewCollector returns a Collector registered against the default
// Prometheus registry.
func NewCollector(cfg Config) *Collector {
	return newCollector(cfg, promauto.With(prometheus.DefaultRegisterer))
}

// NewCollectorWithRegistry returns a Collector registered against a
// caller-supplied registry, for use in tests or multi-tenant hosting.
func NewCollectorWithRegistry(cfg Config, registry *prometheus.Registry) *Collector {
	return newCollector(cfg, promauto.With(registry))
}

func newCollector(cfg Config, factory promauto.Factory) *Collector {
	if cfg.MaxOutcomes <= 0 {
		cfg = DefaultConfig()
	}
	return &Collector{
		cfg:           cfg,
		outcomes:      make([]Outcome, 0, cfg.MaxOutcomes),
		opportunities: make([]*types.Opportunity, 0, cfg.MaxOpportunities),
		latencies:     make(map[string][]LatencyRecord),
		prom: &prometheusMetrics{
			submissionsTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "arb_submissions_total", Help: "Total number of transactions submitted.",
			}),
			profitableTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "arb_profitable_submissions_total", Help: "Total number of submissions that realized a positive profit.",
			}),
			realizedProfit: factory.NewGauge(prometheus.GaugeOpts{
				Name: "arb_realized_profit_total", Help: "Cumulative realized profit in the input asset's smallest unit.",
			}),
			submissionLatency: factory.NewHistogram(prometheus.HistogramOpts{
				Name: "arb_submission_duration_seconds", Help: "Time from opportunity discovery to submission outcome.",
				Buckets: prometheus.DefBuckets,
			}),
			opportunitiesByTag: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "arb_opportunities_detected_total", Help: "Opportunities detected by strategy tag.",
			}, []string{"tag"}),
			submissionsByTag: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "arb_submissions_by_tag_total", Help: "Submissions by strategy tag.",
			}, []string{"tag"}),
			profitByTag: factory.NewGaugeVec(prometheus.GaugeOpts{
				Name: "arb_profit_by_tag", Help: "Cumulative realized profit by strategy tag.",
			}, []string{"tag"}),
			stageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name: "arb_stage_duration_seconds", Help: "Per-stage processing duration.",
				Buckets: prometheus.DefBuckets,
			}, []string{"stage"}),
			queueSize: factory.NewGauge(prometheus.GaugeOpts{
				Name: "arb_queue_size", Help: "Current opportunity queue size.",
			}),
			breakerOpen: factory.NewGauge(prometheus.GaugeOpts{
				Name: "arb_breaker_open", Help: "1 if the circuit breaker is open, 0 otherwise.",
			}),
			successRateByWindow: factory.NewGaugeVec(prometheus.GaugeOpts{
				Name: "arb_success_rate", Help: "Submission success rate over a trailing window.",
			}, []string{"window"}),
		},
	}
}

// RecordOpportunity records a scanner-discovered opportunity, whether
// or not it is ultimately dispatched.
func (c *Collector) RecordOpportunity(opp *types.Opportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opportunities = append(c.opportunities, opp)
	if len(c.opportunities) > c.cfg.MaxOpportunities {
		c.opportunities = c.opportunities[1:]
	}
	c.prom.opportunitiesByTag.WithLabelValues(string(opp.Tag)).Inc()
}

// RecordSubmission records a submission outcome and the latency from
// opportunity discovery to outcome.
func (c *Collector) RecordSubmission(tag types.StrategyTag, result *types.SubmissionOutcome, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o := Outcome{Tag: tag, Result: result, Latency: latency, Timestamp: time.Now()}
	c.outcomes = append(c.outcomes, o)
	if len(c.outcomes) > c.cfg.MaxOutcomes {
		c.outcomes = c.outcomes[1:]
	}

	c.prom.submissionsTotal.Inc()
	c.prom.submissionsByTag.WithLabelValues(string(tag)).Inc()
	c.prom.submissionLatency.Observe(latency.Seconds())

	profit := netProfit(result)
	if profit.Sign() > 0 {
		c.prom.profitableTotal.Inc()
		c.prom.realizedProfit.Add(floatOf(profit))
		c.prom.profitByTag.WithLabelValues(string(tag)).Add(floatOf(profit))
	}
}

// RecordLatency records a named pipeline stage's duration, e.g. the
// optimizer's ternary search or the dry-run round trip.
func (c *Collector) RecordLatency(stage string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[stage] = append(c.latencies[stage], LatencyRecord{Timestamp: time.Now(), Duration: duration})
	if len(c.latencies[stage]) > c.cfg.MaxLatencies {
		c.latencies[stage] = c.latencies[stage][1:]
	}
	c.prom.stageLatency.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetQueueSize publishes the orchestrator's current queue depth.
func (c *Collector) SetQueueSize(n int) { c.prom.queueSize.Set(float64(n)) }

// SetBreakerOpen publishes whether the circuit breaker is currently open.
func (c *Collector) SetBreakerOpen(open bool) {
	if open {
		c.prom.breakerOpen.Set(1)
		return
	}
	c.prom.breakerOpen.Set(0)
}

// PerformanceWindow summarizes submission outcomes over the trailing
// windowSize submissions.
type PerformanceWindow struct {
	WindowSize       int
	TotalSubmissions int
	Successful       int
	Failed           int
	SuccessRate      float64
	// SuccessRatePercent is SuccessRate rendered for display, e.g. "66.67%".
	SuccessRatePercent string
	NetProfit          *big.Int
	AverageProfit    *big.Int
	MedianProfit     *big.Int
	MaxProfit        *big.Int
	MaxLoss          *big.Int
	LastUpdated      time.Time
}

// PerformanceWindow computes a PerformanceWindow over the last
// windowSize submissions, publishing the success-rate gauge as a side
// effect so /metrics stays current with the same window the status API
// reports.
func (c *Collector) PerformanceWindow(windowSize int) *PerformanceWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := len(c.outcomes) - windowSize
	if start < 0 {
		start = 0
	}
	window := c.outcomes[start:]

	w := &PerformanceWindow{
		WindowSize:         windowSize,
		NetProfit:          big.NewInt(0),
		MaxProfit:          big.NewInt(0),
		MaxLoss:            big.NewInt(0),
		SuccessRatePercent: formatPercent(0),
		LastUpdated:        time.Now(),
	}
	if len(window) == 0 {
		w.AverageProfit, w.MedianProfit = big.NewInt(0), big.NewInt(0)
		return w
	}

	w.TotalSubmissions = len(window)
	profits := make([]*big.Int, 0, len(window))
	for _, o := range window {
		profit := netProfit(o.Result)
		profits = append(profits, profit)
		w.NetProfit.Add(w.NetProfit, profit)
		if profit.Sign() > 0 {
			w.Successful++
			if profit.Cmp(w.MaxProfit) > 0 {
				w.MaxProfit = profit
			}
		} else {
			w.Failed++
			loss := new(big.Int).Abs(profit)
			if loss.Cmp(w.MaxLoss) > 0 {
				w.MaxLoss = loss
			}
		}
	}

	w.SuccessRate = float64(w.Successful) / float64(w.TotalSubmissions)
	w.SuccessRatePercent = formatPercent(w.SuccessRate)
	w.AverageProfit = new(big.Int).Div(w.NetProfit, big.NewInt(int64(w.TotalSubmissions)))
	w.MedianProfit = median(profits)

	c.prom.successRateByWindow.WithLabelValues(windowLabel(windowSize)).Set(w.SuccessRate)
	return w
}

// LatencyWindow summarizes a stage's latency distribution over the
// trailing windowSize samples.
type LatencyWindow struct {
	Stage       string
	WindowSize  int
	SampleCount int
	Average     time.Duration
	Min         time.Duration
	Max         time.Duration
	P50         time.Duration
	P99         time.Duration
	LastUpdated time.Time
}

func (c *Collector) LatencyWindow(stage string, windowSize int) *LatencyWindow {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := c.latencies[stage]
	start := len(records) - windowSize
	if start < 0 {
		start = 0
	}
	window := records[start:]

	lw := &LatencyWindow{Stage: stage, WindowSize: windowSize, LastUpdated: time.Now()}
	if len(window) == 0 {
		return lw
	}

	durations := make([]time.Duration, len(window))
	var total time.Duration
	lw.Min, lw.Max = window[0].Duration, window[0].Duration
	for i, r := range window {
		durations[i] = r.Duration
		total += r.Duration
		if r.Duration < lw.Min {
			lw.Min = r.Duration
		}
		if r.Duration > lw.Max {
			lw.Max = r.Duration
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	lw.SampleCount = len(durations)
	lw.Average = total / time.Duration(len(durations))
	lw.P50 = percentile(durations, 0.50)
	lw.P99 = percentile(durations, 0.99)
	return lw
}

func netProfit(r *types.SubmissionOutcome) *big.Int {
	if r == nil || r.RealizedProfit == nil {
		return big.NewInt(0)
	}
	profit := new(big.Int).Set(r.RealizedProfit)
	if r.GasCost != nil {
		profit.Sub(profit, r.GasCost)
	}
	return profit
}

func median(sorted []*big.Int) *big.Int {
	cp := make([]*big.Int, len(sorted))
	copy(cp, sorted)
	sort.Slice(cp, func(i, j int) bool { return cp[i].Cmp(cp[j]) < 0 })
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return new(big.Int).Div(new(big.Int).Add(cp[mid-1], cp[mid]), big.NewInt(2))
	}
	return new(big.Int).Set(cp[mid])
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func floatOf(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// formatPercent renders a fractional rate (0..1) as a fixed, two-decimal
// percentage string for display in the status endpoint, avoiding the
// binary-float rounding artifacts strconv.FormatFloat can produce.
func formatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

func windowLabel(n int) string {
	switch {
	case n >= 1000:
		return "1000"
	case n >= 500:
		return "500"
	case n >= 100:
		return "100"
	default:
		return "50"
	}
}
