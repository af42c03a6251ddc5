package types

import "fmt"

// AssetType identifies a fungible asset by its on-chain type tag, e.g.
// "0x2::sui::SUI" or a package-qualified coin type. It is the unit in
// which PoolSnapshot prices, Opportunity amounts, and DecimalsMap entries
// are all expressed.
type AssetType string

// Venue identifies one of the five supported liquidity venues.
type Venue string

const (
	VenueCLMMA      Venue = "clmm_a"      // concentrated-liquidity AMM, family C1 (self-describing receipt)
	VenueCLMMB      Venue = "clmm_b"      // concentrated-liquidity AMM, family C2 (opaque receipt)
	VenueCLOB       Venue = "clob"        // central limit order book, hot-potato flash loan
	VenueWeighted   Venue = "weighted"    // weighted AMM, no flash support
	VenueFlashCLMMC Venue = "flash_clmm_c" // second flash-swap CLMM, family C3
)

// PoolID identifies a single liquidity pool on a venue.
type PoolID string

// PoolKey is the identity of a PoolSnapshot: venue, pool, and the ordered
// asset pair it quotes.
type PoolKey struct {
	Venue Venue
	Pool  PoolID
	Base  AssetType
	Quote AssetType
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%s/%s/%s-%s", k.Venue, k.Pool, k.Base, k.Quote)
}

// DecimalsMap maps an AssetType to its integer decimal count, used to
// normalize raw pool prices into a common unit before cross-venue
// comparison.
type DecimalsMap map[AssetType]uint8

// Decimals returns the configured decimal count for an asset, or ok=false
// if the asset is not recognized.
func (d DecimalsMap) Decimals(a AssetType) (uint8, bool) {
	v, ok := d[a]
	return v, ok
}
