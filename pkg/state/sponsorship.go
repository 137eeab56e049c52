package state

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/Nekuips1x/Waves/pkg/settings"
)

// ToBase converts an asset-denominated fee to base units using the
// issuer's declared sponsorship rate:
// floor(assetFee * FeeUnit / rate), computed in unbounded integer
// arithmetic and then exact-converted to int64. rate == 0 means "not
// sponsored"; ToBase returns math.MaxInt64 as the documented sentinel
// for "unusable" rather than dividing by zero.
func ToBase(assetFee int64, rate int64) int64 {
	if rate == 0 {
		return maxInt64Sentinel
	}
	num := new(big.Int).Mul(big.NewInt(assetFee), big.NewInt(settings.FeeUnit))
	result := new(big.Int).Div(num, big.NewInt(rate))
	if !result.IsInt64() {
		return maxInt64Sentinel
	}
	return result.Int64()
}

// FromBase is ToBase's inverse: floor(baseFee * rate / FeeUnit).
func FromBase(baseFee int64, rate int64) (int64, error) {
	if rate == 0 {
		return 0, errors.New("asset is not sponsored: rate is zero")
	}
	num := new(big.Int).Mul(big.NewInt(baseFee), big.NewInt(rate))
	result := new(big.Int).Div(num, big.NewInt(settings.FeeUnit))
	if !result.IsInt64() {
		return 0, errors.New("from_base conversion overflows int64")
	}
	return result.Int64(), nil
}

const maxInt64Sentinel = int64(1<<63 - 1)
