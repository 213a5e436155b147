package mathutil_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/pkg/mathutil"
)

func TestLessFee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		amount             uint64
		fee                uint64
		expectedWithoutFee uint64
		expectedFee        uint64
	}{
		{"no_fee", 400, 0, 400, 0},
		{"one_percent", 400_000000, 100, 396_000000, 4_000000},
		{"rounded_down", 999, 25, 997, 2},
		{"max_fee", 1000, 500, 950, 50},
		{"capped", 1000, 20000, 0, 1000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			withoutFee, fee := mathutil.LessFee(tt.amount, tt.fee)
			require.Equal(t, tt.expectedWithoutFee, withoutFee)
			require.Equal(t, tt.expectedFee, fee)
			require.Equal(t, tt.amount, withoutFee+fee)
		})
	}
}

func TestUnits(t *testing.T) {
	t.Parallel()

	units, err := mathutil.ToUnits(decimal.RequireFromString("30.5"), 6)
	require.NoError(t, err)
	require.Equal(t, uint64(30_500000), units)
	require.True(t, mathutil.FromUnits(units, 6).Equal(decimal.RequireFromString("30.5")))

	_, err = mathutil.ToUnits(decimal.NewFromInt(-1), 6)
	require.ErrorIs(t, err, mathutil.ErrAmountOverflow)

	_, err = mathutil.ToUnits(decimal.RequireFromString("1e30"), 6)
	require.ErrorIs(t, err, mathutil.ErrAmountOverflow)
}

func TestMulRateCeil(t *testing.T) {
	t.Parallel()

	n, err := mathutil.MulRateCeil(100, decimal.RequireFromString("1.005"))
	require.NoError(t, err)
	require.Equal(t, uint64(101), n)

	n, err = mathutil.MulRateCeil(100, decimal.NewFromInt(1))
	require.NoError(t, err)
	require.Equal(t, uint64(100), n)

	_, err = mathutil.MulRateCeil(math.MaxUint64, decimal.NewFromInt(2))
	require.ErrorIs(t, err, mathutil.ErrAmountOverflow)

	_, err = mathutil.AddUint64(math.MaxUint64, 1)
	require.ErrorIs(t, err, mathutil.ErrAmountOverflow)
}
