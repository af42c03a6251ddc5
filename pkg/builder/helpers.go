package builder

import "math/big"

func bigFromInt64(v int64) *big.Int {
	return big.NewInt(v)
}
