package signalutil_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/pkg/signalutil"
)

func TestPackUnpackString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      string
		numSignals int
	}{
		{"short", "venmo", 1},
		{"exact", "1234567", 1},
		{"multiple_signals", "venmo@venmo.com", 3},
		{"padded", "30.00", 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			signals := signalutil.PackString(tt.value, tt.numSignals)
			require.Len(t, signals, tt.numSignals)

			s, err := signalutil.UnpackString(signals)
			require.NoError(t, err)
			require.Equal(t, tt.value, s)
		})
	}
}

func TestPackBytesLittleEndian(t *testing.T) {
	t.Parallel()

	signals := signalutil.PackBytes([]byte("ab"))
	require.Len(t, signals, 1)
	// 'a' is the least significant byte.
	require.Equal(t, int64('b')<<8|int64('a'), signals[0].Int64())
}

func TestFailingUnpackString(t *testing.T) {
	t.Parallel()

	overflow := new(big.Int).Lsh(big.NewInt(1), 56)
	_, err := signalutil.UnpackString([]*big.Int{overflow})
	require.ErrorIs(t, err, signalutil.ErrSignalOverflow)

	_, err = signalutil.UnpackString([]*big.Int{big.NewInt(-1)})
	require.ErrorIs(t, err, signalutil.ErrSignalOverflow)

	_, err = signalutil.UnpackString([]*big.Int{nil})
	require.ErrorIs(t, err, signalutil.ErrNilSignal)
}

func TestStringToUint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		value         string
		decimals      int
		expected      string
		expectedError error
	}{
		{"integer", "30", 6, "30000000", nil},
		{"two_decimals", "30.00", 6, "30000000", nil},
		{"fraction", "0.5", 6, "500000", nil},
		{"no_int_part", ".25", 2, "25", nil},
		{"thousands", "1,000.50", 6, "1000500000", nil},
		{"trailing_zeros", "1.1000000", 6, "1100000", nil},
		{"empty", "", 6, "", signalutil.ErrInvalidNumber},
		{"dot_only", ".", 6, "", signalutil.ErrInvalidNumber},
		{"letters", "3O.00", 6, "", signalutil.ErrInvalidNumber},
		{"negative", "-1", 6, "", signalutil.ErrInvalidNumber},
		{"two_dots", "1.0.0", 6, "", signalutil.ErrInvalidNumber},
		{"too_many_decimals", "1.1234567", 6, "", signalutil.ErrTooManyDecimals},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			n, err := signalutil.StringToUint(tt.value, tt.decimals)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, n.String())
		})
	}
}

func TestUnpackUint(t *testing.T) {
	t.Parallel()

	n, err := signalutil.UnpackUint(signalutil.PackString("400.00", 2), 6)
	require.NoError(t, err)
	require.Equal(t, "400000000", n.String())
}
