package state

import (
	"math/big"

	"github.com/pkg/errors"
)

// bigUint128 is a non-negative integer bounded to 128 bits, used for
// AssetDescription.TotalVolume, built on math/big with the bound
// enforced on every operation.
type bigUint128 struct {
	v *big.Int
}

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
var minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))

// newBigUint128 wraps v, bounded to 128 bits in magnitude. Despite its
// name it also carries negative values: a reissue/burn delta is signed
// (burn lowers total volume), while an asset's settled TotalVolume is
// always non-negative by construction (add rejects any combination
// that would drive it below zero).
func newBigUint128(v int64) (*bigUint128, error) {
	if big.NewInt(v).Cmp(minInt128) < 0 {
		return nil, errors.Errorf("volume %d exceeds the 128-bit range", v)
	}
	return &bigUint128{v: big.NewInt(v)}, nil
}

func (b *bigUint128) add(o *bigUint128) (*bigUint128, error) {
	sum := new(big.Int).Add(b.v, o.v)
	if sum.Sign() < 0 || sum.Cmp(maxUint128) > 0 {
		return nil, errors.Errorf("asset volume overflow: %s + %s", b.v, o.v)
	}
	return &bigUint128{v: sum}, nil
}

func (b *bigUint128) Int64() (int64, error) {
	if !b.v.IsInt64() {
		return 0, errors.Errorf("volume %s does not fit in int64", b.v)
	}
	return b.v.Int64(), nil
}

func (b *bigUint128) String() string { return b.v.String() }
