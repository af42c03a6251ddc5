package types

import (
	"math/big"
	"time"
)

// StaleAfter is the age at which a PoolSnapshot is excluded from scanning.
const StaleAfter = 10 * time.Second

// PriceKind distinguishes the venue-specific price representation carried
// by a PoolSnapshot.
type PriceKind int

const (
	// PriceKindSqrtX64 is a CLMM sqrt-price scaled by 2^64.
	PriceKindSqrtX64 PriceKind = iota
	// PriceKindBookTopOfBook is a best-bid/best-ask pair for the order-book venue.
	PriceKindBookTopOfBook
	// PriceKindReserves is raw reserve balances for the weighted AMM.
	PriceKindReserves
)

// PoolSnapshot is a timestamped capture of one pool's state.
type PoolSnapshot struct {
	Key PoolKey
	Kind PriceKind

	// SqrtPriceX64 is populated when Kind == PriceKindSqrtX64.
	SqrtPriceX64 *big.Int

	// BestBid/BestAsk are populated when Kind == PriceKindBookTopOfBook.
	BestBid *big.Float
	BestAsk *big.Float

	// ReserveBase/ReserveQuote and Weights are populated when
	// Kind == PriceKindReserves.
	ReserveBase  *big.Int
	ReserveQuote *big.Int
	WeightBase   float64
	WeightQuote  float64

	// Liquidity is the available liquidity or depth at the current price,
	// in whatever unit the venue publishes it (ticks-liquidity for CLMMs,
	// base-asset depth for the order book, reserve magnitude for the AMM).
	Liquidity *big.Int

	CapturedAt time.Time
}

// IsStale reports whether the snapshot is older than StaleAfter relative
// to now.
func (s *PoolSnapshot) IsStale(now time.Time) bool {
	return now.Sub(s.CapturedAt) > StaleAfter
}

// NormalizedPrice returns the quote-per-base price of the snapshot as a
// float64 in a common unit, after adjusting for the decimal difference
// between Base and Quote. It returns ok=false if the snapshot's Kind does
// not carry enough information to compute a price (e.g. zero reserves).
func (s *PoolSnapshot) NormalizedPrice(decimals DecimalsMap) (float64, bool) {
	baseDec, ok := decimals.Decimals(s.Key.Base)
	if !ok {
		return 0, false
	}
	quoteDec, ok := decimals.Decimals(s.Key.Quote)
	if !ok {
		return 0, false
	}
	scale := pow10(int(quoteDec) - int(baseDec))

	switch s.Kind {
	case PriceKindSqrtX64:
		if s.SqrtPriceX64 == nil || s.SqrtPriceX64.Sign() <= 0 {
			return 0, false
		}
		sqrtPrice := new(big.Float).SetInt(s.SqrtPriceX64)
		q64 := new(big.Float).SetInt(new(big.Int).Lsh(big.NewInt(1), 64))
		normalizedSqrt := new(big.Float).Quo(sqrtPrice, q64)
		price := new(big.Float).Mul(normalizedSqrt, normalizedSqrt)
		f, _ := price.Float64()
		return f * scale, true
	case PriceKindBookTopOfBook:
		if s.BestBid == nil || s.BestAsk == nil {
			return 0, false
		}
		mid := new(big.Float).Add(s.BestBid, s.BestAsk)
		mid.Quo(mid, big.NewFloat(2))
		f, _ := mid.Float64()
		return f * scale, true
	case PriceKindReserves:
		if s.ReserveBase == nil || s.ReserveQuote == nil || s.ReserveBase.Sign() <= 0 {
			return 0, false
		}
		base := new(big.Float).SetInt(s.ReserveBase)
		quote := new(big.Float).SetInt(s.ReserveQuote)
		price := new(big.Float).Quo(quote, base)
		f, _ := price.Float64()
		return f * scale, true
	default:
		return 0, false
	}
}

func pow10(n int) float64 {
	result := 1.0
	if n >= 0 {
		for i := 0; i < n; i++ {
			result *= 10
		}
		return result
	}
	for i := 0; i < -n; i++ {
		result *= 10
	}
	return 1 / result
}
