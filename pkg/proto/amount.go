package proto

import (
	"math"

	"github.com/pkg/errors"
)

// Amount is a signed 64-bit quantity of some asset, in its smallest
// unit. Balance arithmetic on Amount must be checked: overflow is a
// protocol error, never a silent wraparound.
type Amount int64

// Height is a non-negative block height.
type Height uint64

// CheckedAdd adds a and b, returning an error on signed 64-bit
// overflow instead of wrapping.
func CheckedAdd(a, b Amount) (Amount, error) {
	ai, bi := int64(a), int64(b)
	sum := ai + bi
	// Overflow happens iff the operands have the same sign and the
	// result's sign differs from theirs.
	if (bi > 0 && ai > math.MaxInt64-bi) || (bi < 0 && ai < math.MinInt64-bi) {
		return 0, errors.Errorf("balance overflow: %d + %d", ai, bi)
	}
	return Amount(sum), nil
}

// CheckedSub subtracts b from a with overflow detection.
func CheckedSub(a, b Amount) (Amount, error) {
	if b == math.MinInt64 {
		return 0, errors.Errorf("balance overflow: %d - %d", a, b)
	}
	return CheckedAdd(a, -b)
}
