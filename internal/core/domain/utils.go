package domain

import (
	"encoding/binary"
	"math/big"
	"regexp"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	hashRegexp = regexp.MustCompile("^0x[0-9a-f]{64}$")

	// SnarkScalarField is the order of the BN254 scalar field. Hashes bound
	// into proofs as public signals are reduced modulo it.
	SnarkScalarField, _ = new(big.Int).SetString(
		"21888242871839275222246405745257275088548364400416034343698204186575808495617", 10,
	)
)

// IsValidAddress returns whether the given string is an hex encoded address.
func IsValidAddress(addr string) bool {
	return common.IsHexAddress(addr) && common.HexToAddress(addr) != (common.Address{})
}

// NormalizeAddress returns the checksummed version of the given address.
func NormalizeAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}

// SameAddress compares two addresses regardless of their casing.
func SameAddress(a, b string) bool {
	return common.HexToAddress(a) == common.HexToAddress(b)
}

// IsValidHash returns whether the given string is a 0x prefixed, lowercase,
// 32-byte hex string.
func IsValidHash(h string) bool {
	return hashRegexp.MatchString(h)
}

// NormalizeHash lowercases the given hash and adds the 0x prefix if missing.
func NormalizeHash(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if !strings.HasPrefix(h, "0x") {
		h = "0x" + h
	}
	return h
}

// HashFromBigInt returns the bytes32 representation of the given number.
func HashFromBigInt(n *big.Int) string {
	return common.BigToHash(n).Hex()
}

// MakeIntentID derives the id of an intent from the deposit it draws from,
// its taker and a nonce, as keccak256(uint256 ‖ address ‖ uint256) reduced
// modulo SnarkScalarField so that payment proofs can commit to it.
func MakeIntentID(depositID uint64, taker string, nonce uint64) string {
	buf := make([]byte, 0, 96)
	buf = append(buf, uint256Bytes(depositID)...)
	buf = append(buf, common.LeftPadBytes(common.HexToAddress(taker).Bytes(), 32)...)
	buf = append(buf, uint256Bytes(nonce)...)

	h := new(big.Int).SetBytes(crypto.Keccak256(buf))
	return HashFromBigInt(h.Mod(h, SnarkScalarField))
}

func uint256Bytes(n uint64) []byte {
	b := make([]byte, 32)
	binary.BigEndian.PutUint64(b[24:], n)
	return b
}

func sortStrings(list []string) {
	sort.Strings(list)
}

func containsString(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	for i, l := range list {
		if l == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
