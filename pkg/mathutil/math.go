package mathutil

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrAmountOverflow is returned when an amount doesn't fit in 64 bits.
var ErrAmountOverflow = errors.New("amount overflows uint64")

// DecimalFromUint64 ...
func DecimalFromUint64(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0)
}

// ToUnits converts an amount expressed in whole units, like "30.5", into
// base units with the given precision. Extra precision is truncated.
func ToUnits(amount decimal.Decimal, precision int32) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrAmountOverflow
	}
	units := amount.Shift(precision).BigInt()
	if !units.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return units.Uint64(), nil
}

// FromUnits converts an amount in base units with the given precision into
// whole units.
func FromUnits(units uint64, precision int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -precision)
}

// MulRateCeil returns amount × rate rounded up to the next integer.
func MulRateCeil(amount uint64, rate decimal.Decimal) (uint64, error) {
	res := DecimalFromUint64(amount).Mul(rate).Ceil().BigInt()
	if !res.IsUint64() {
		return 0, ErrAmountOverflow
	}
	return res.Uint64(), nil
}

// AddUint64 sums x and y, failing on overflow.
func AddUint64(x, y uint64) (uint64, error) {
	if x > math.MaxUint64-y {
		return 0, ErrAmountOverflow
	}
	return x + y, nil
}
