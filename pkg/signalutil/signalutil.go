// Package signalutil converts between the public signals of email circuits
// and the values they encode.
//
// Circuits pack strings into field elements 7 bytes at a time, little
// endian: the first byte of a chunk is the least significant byte of the
// signal. Unused trailing bytes are zero.
package signalutil

import (
	"errors"
	"math/big"
	"strings"
)

// BytesPerSignal is the number of bytes packed into a single signal.
const BytesPerSignal = 7

var (
	// ErrSignalOverflow is returned when a packed signal doesn't fit in
	// BytesPerSignal bytes.
	ErrSignalOverflow = errors.New("signal exceeds packed size")
	// ErrNilSignal ...
	ErrNilSignal = errors.New("nil signal")
	// ErrInvalidNumber is returned when a string doesn't represent a
	// positive decimal number.
	ErrInvalidNumber = errors.New("invalid decimal number")
	// ErrTooManyDecimals is returned when a number has more fractional
	// digits than the requested precision.
	ErrTooManyDecimals = errors.New("too many decimal digits")
)

// PackBytes packs the given bytes into signals.
func PackBytes(b []byte) []*big.Int {
	numSignals := (len(b) + BytesPerSignal - 1) / BytesPerSignal
	signals := make([]*big.Int, 0, numSignals)
	for i := 0; i < numSignals; i++ {
		signal := new(big.Int)
		end := (i + 1) * BytesPerSignal
		if end > len(b) {
			end = len(b)
		}
		for j := end - 1; j >= i*BytesPerSignal; j-- {
			signal.Lsh(signal, 8)
			signal.Or(signal, big.NewInt(int64(b[j])))
		}
		signals = append(signals, signal)
	}
	return signals
}

// PackString packs the given string into exactly n signals, padding with
// zeros or truncating.
func PackString(s string, n int) []*big.Int {
	b := []byte(s)
	if len(b) > n*BytesPerSignal {
		b = b[:n*BytesPerSignal]
	}
	signals := PackBytes(b)
	for len(signals) < n {
		signals = append(signals, new(big.Int))
	}
	return signals
}

// UnpackBytes unpacks the given signals into bytes, dropping zero bytes.
func UnpackBytes(signals []*big.Int) ([]byte, error) {
	b := make([]byte, 0, len(signals)*BytesPerSignal)
	for _, signal := range signals {
		if signal == nil {
			return nil, ErrNilSignal
		}
		if signal.Sign() < 0 || signal.BitLen() > BytesPerSignal*8 {
			return nil, ErrSignalOverflow
		}

		v := new(big.Int).Set(signal)
		for i := 0; i < BytesPerSignal; i++ {
			c := byte(v.Uint64() & 0xff)
			v.Rsh(v, 8)
			if c != 0 {
				b = append(b, c)
			}
		}
	}
	return b, nil
}

// UnpackString unpacks the given signals into a string.
func UnpackString(signals []*big.Int) (string, error) {
	b, err := UnpackBytes(signals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StringToUint parses a decimal number like "1,000.50" into an integer
// scaled by 10^decimals. Comma thousands separators are ignored.
func StringToUint(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if len(s) == 0 {
		return nil, ErrInvalidNumber
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if len(intPart) == 0 && len(fracPart) == 0 {
		return nil, ErrInvalidNumber
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, ErrInvalidNumber
	}

	fracPart = strings.TrimRight(fracPart, "0")
	if len(fracPart) > decimals {
		return nil, ErrTooManyDecimals
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	n, ok := new(big.Int).SetString("0"+intPart+fracPart, 10)
	if !ok {
		return nil, ErrInvalidNumber
	}
	return n, nil
}

// UnpackUint unpacks the given signals into a string and parses it with
// StringToUint.
func UnpackUint(signals []*big.Int, decimals int) (*big.Int, error) {
	s, err := UnpackString(signals)
	if err != nil {
		return nil, err
	}
	return StringToUint(s, decimals)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
