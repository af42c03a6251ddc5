package types

import (
	"math/big"
	"time"
)

// OpportunityTTL is the maximum age an Opportunity may reach before the
// orchestrator discards it rather than building a transaction for it.
const OpportunityTTL = 3 * time.Second

// StrategyTag identifies one of the 27 atomic composition variants.
type StrategyTag string

// Leg is one hop of a strategy: a venue and the pool it trades on, plus
// whether the pair is traversed base->quote or quote->base.
type Leg struct {
	Venue    Venue
	Pool     PoolID
	Reversed bool // true when swapping quote->base on this leg
}

// Opportunity is a candidate arbitrage route discovered by the Scanner
// and refined by the Optimizer.
type Opportunity struct {
	Tag StrategyTag

	// Legs is the ordered list of hops; Legs[SourceLegIndex] is the one
	// that supplies liquidity via a flash primitive.
	Legs            []Leg
	SourceLegIndex  int

	InputAsset AssetType
	AmountIn   *big.Int

	EstimatedAmountOut *big.Int
	EstimatedProfit    *big.Int

	DiscoveredAt time.Time
}

// IsExpired reports whether the opportunity has exceeded OpportunityTTL.
func (o *Opportunity) IsExpired(now time.Time) bool {
	return now.Sub(o.DiscoveredAt) > OpportunityTTL
}

// IsTwoHop reports whether the opportunity has exactly two legs.
func (o *Opportunity) IsTwoHop() bool { return len(o.Legs) == 2 }

// IsTriHop reports whether the opportunity has exactly three legs.
func (o *Opportunity) IsTriHop() bool { return len(o.Legs) == 3 }
