package parsers

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

type weightedRaw struct {
	ReserveBase      *string  `json:"reserve_base"`
	ReserveQuote     *string  `json:"reserve_quote"`
	WeightBase       *float64 `json:"weight_base"`
	WeightQuote      *float64 `json:"weight_quote"`
	CapturedAtUnixMs *int64   `json:"captured_at_unix_ms"`
}

// WeightedParser parses a weighted-AMM pool's reserves and weights into
// a PriceKindReserves snapshot.
type WeightedParser struct{}

var _ interfaces.PoolParser = WeightedParser{}

func (WeightedParser) Parse(raw []byte, key types.PoolKey) (*types.PoolSnapshot, bool) {
	var r weightedRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	if r.ReserveBase == nil || r.ReserveQuote == nil || r.WeightBase == nil || r.WeightQuote == nil {
		return nil, false
	}

	reserveBase, ok := new(big.Int).SetString(*r.ReserveBase, 10)
	if !ok || reserveBase.Sign() <= 0 {
		return nil, false
	}
	reserveQuote, ok := new(big.Int).SetString(*r.ReserveQuote, 10)
	if !ok || reserveQuote.Sign() <= 0 {
		return nil, false
	}

	wBase, wQuote := *r.WeightBase, *r.WeightQuote
	if wBase <= 0 || wQuote <= 0 || wBase+wQuote > 1.0000001 {
		return nil, false
	}

	capturedAt := time.Now()
	if r.CapturedAtUnixMs != nil && *r.CapturedAtUnixMs > 0 {
		capturedAt = time.UnixMilli(*r.CapturedAtUnixMs)
	}

	return &types.PoolSnapshot{
		Key:          key,
		Kind:         types.PriceKindReserves,
		ReserveBase:  reserveBase,
		ReserveQuote: reserveQuote,
		WeightBase:   wBase,
		WeightQuote:  wQuote,
		CapturedAt:   capturedAt,
	}, true
}
