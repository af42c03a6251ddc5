package parsers

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

type clobRaw struct {
	BestBid          *string `json:"best_bid"`
	BestAsk          *string `json:"best_ask"`
	CapturedAtUnixMs *int64  `json:"captured_at_unix_ms"`
}

// CLOBParser parses an order book's top-of-book quote into a
// PriceKindBookTopOfBook snapshot.
type CLOBParser struct{}

var _ interfaces.PoolParser = CLOBParser{}

func (CLOBParser) Parse(raw []byte, key types.PoolKey) (*types.PoolSnapshot, bool) {
	var r clobRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	if r.BestBid == nil || r.BestAsk == nil {
		return nil, false
	}

	bid, ok := new(big.Float).SetString(*r.BestBid)
	if !ok || bid.Sign() <= 0 {
		return nil, false
	}
	ask, ok := new(big.Float).SetString(*r.BestAsk)
	if !ok || ask.Sign() <= 0 {
		return nil, false
	}
	if bid.Cmp(ask) > 0 {
		// Crossed book: not a usable quote.
		return nil, false
	}

	capturedAt := time.Now()
	if r.CapturedAtUnixMs != nil && *r.CapturedAtUnixMs > 0 {
		capturedAt = time.UnixMilli(*r.CapturedAtUnixMs)
	}

	return &types.PoolSnapshot{
		Key:        key,
		Kind:       types.PriceKindBookTopOfBook,
		BestBid:    bid,
		BestAsk:    ask,
		CapturedAt: capturedAt,
	}, true
}
