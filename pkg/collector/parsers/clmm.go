// Package parsers extracts PoolSnapshot values from venue-specific raw
// object reads. Every parser tolerates missing, null, and out-of-range
// fields by returning ok=false rather than panicking or erroring, per
// the collector's parser contract.
package parsers

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"github.com/mev-engine/atomic-arb-engine/pkg/types"
)

type clmmRaw struct {
	SqrtPriceX64     *string `json:"sqrt_price_x64"`
	Liquidity        *string `json:"liquidity"`
	CapturedAtUnixMs *int64  `json:"captured_at_unix_ms"`
}

// CLMMParser parses the sqrt-price state shared by both concentrated-
// liquidity AMM variants and the second flash-swap CLMM.
type CLMMParser struct{}

var _ interfaces.PoolParser = CLMMParser{}

func (CLMMParser) Parse(raw []byte, key types.PoolKey) (*types.PoolSnapshot, bool) {
	var r clmmRaw
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, false
	}
	if r.SqrtPriceX64 == nil {
		return nil, false
	}
	sqrtPrice, ok := new(big.Int).SetString(*r.SqrtPriceX64, 10)
	if !ok || sqrtPrice.Sign() <= 0 {
		return nil, false
	}

	liquidity := big.NewInt(0)
	if r.Liquidity != nil {
		if l, ok := new(big.Int).SetString(*r.Liquidity, 10); ok && l.Sign() >= 0 {
			liquidity = l
		}
	}

	capturedAt := time.Now()
	if r.CapturedAtUnixMs != nil && *r.CapturedAtUnixMs > 0 {
		capturedAt = time.UnixMilli(*r.CapturedAtUnixMs)
	}

	return &types.PoolSnapshot{
		Key:          key,
		Kind:         types.PriceKindSqrtX64,
		SqrtPriceX64: sqrtPrice,
		Liquidity:    liquidity,
		CapturedAt:   capturedAt,
	}, true
}
