package mathutil

import (
	"github.com/shopspring/decimal"
)

// TenThousands ...
var TenThousands = uint64(10000)

// LessFee calculates an amount with a subtracted fee given a uint64 amount
// and a fee expressed in basis point (ie. 0.25% = 25). The fee is rounded
// down so that the recipient never gets less than its due.
func LessFee(amount, feeAsBasisPoint uint64) (withoutFee, calculatedFee uint64) {
	if feeAsBasisPoint == 0 {
		return amount, 0
	}
	if feeAsBasisPoint > TenThousands {
		feeAsBasisPoint = TenThousands
	}

	feeDecimal := DecimalFromUint64(feeAsBasisPoint)
	amountDecimal := DecimalFromUint64(amount)

	calculatedFeeDecimal := amountDecimal.Mul(feeDecimal).
		Div(DecimalFromUint64(TenThousands)).
		Floor()
	withoutFeeDecimal := amountDecimal.Sub(calculatedFeeDecimal)

	return withoutFeeDecimal.BigInt().Uint64(), calculatedFeeDecimal.BigInt().Uint64()
}

// FeeRatio returns the fee expressed in basis point as a ratio.
func FeeRatio(feeAsBasisPoint uint64) decimal.Decimal {
	return DecimalFromUint64(feeAsBasisPoint).Div(DecimalFromUint64(TenThousands))
}
