// Package scanner detects cross-venue price divergences over the
// collector's cached pool snapshots: two-hop pairs and tri-hop cycles.
// Grounded on the teacher's pkg/strategy detectors (backrun_detector.go's
// price-gap comparison, cross_layer_detector.go's cross-venue price
// pair pattern), generalized from a single cross-layer bridge price
// pair to an O(N^2)/O(N^3) scan over every monitored pool.
package scanner

import (
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/strategies"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

// TwoHopThreshold is the minimum relative price divergence (spec:
// 0.1%) required before a two-hop candidate is emitted.
const TwoHopThreshold = 0.001

// TriHopThreshold is the minimum composite cross-rate (spec: 1.003)
// required before a tri-hop candidate is emitted.
const TriHopThreshold = 1.003

// DefaultProbeUnits is the probe input amount New falls back to, used
// to estimate profit before the optimizer refines it: one smallest unit
// of the input asset. It is not scaled by the asset's decimals.
const DefaultProbeUnits = 1

// Scanner implements interfaces.Scanner over a DecimalsMap used to
// normalize prices for cross-venue comparison.
type Scanner struct {
	ProbeAmount int64 // probe size, in the input asset's smallest unit
}

// New returns a Scanner that probes with probeAmount, given in the input
// asset's smallest unit; a non-positive amount falls back to
// DefaultProbeUnits.
func New(probeAmount int64) *Scanner {
	if probeAmount <= 0 {
		probeAmount = DefaultProbeUnits
	}
	return &Scanner{ProbeAmount: probeAmount}
}

// pairKey identifies an unordered asset pair after normalizing which
// side is "base" so pools quoting the reverse order still match.
type pairKey struct {
	a, b types.AssetType
}

func normalizedPair(base, quote types.AssetType) pairKey {
	if base < quote {
		return pairKey{base, quote}
	}
	return pairKey{quote, base}
}

// freshPools filters out stale snapshots, per the spec's freshness
// gate: any snapshot older than types.StaleAfter disqualifies its pool.
func freshPools(snapshots []*types.PoolSnapshot, now time.Time) []*types.PoolSnapshot {
	out := make([]*types.PoolSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s == nil || s.IsStale(now) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// templateFor looks up the two-hop template arb_<source>_to_<sink> for
// a (source, sink) venue pair. Only that one orientation is tried; there
// is no template when source is the weighted AMM.
func templateFor(source, sink types.Venue) (*strategies.Template, bool) {
	tag := types.StrategyTag("arb_" + string(source) + "_to_" + string(sink))
	return strategies.Lookup(tag)
}
