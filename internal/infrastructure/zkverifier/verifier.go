package zkverifier

import (
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

var (
	// ErrMalformedProof is returned when a proof coordinate is missing or
	// the point is not on the curve.
	ErrMalformedProof = errors.New("malformed proof")
	// ErrInvalidNumSignals is returned when the number of public signals
	// doesn't match the verifying key.
	ErrInvalidNumSignals = errors.New("invalid number of public signals")
	// ErrSignalOutOfField is returned when a signal is not a canonical
	// element of the BN254 scalar field.
	ErrSignalOutOfField = errors.New("public signal out of scalar field")
)

type verifier struct {
	vk groth16.VerifyingKey
}

// NewVerifier returns a groth16 verifier over BN254 for the given key.
func NewVerifier(vk groth16.VerifyingKey) (ports.ProofVerifier, error) {
	if vk == nil {
		return nil, fmt.Errorf("missing verifying key")
	}
	if vk.CurveID() != ecc.BN254 {
		return nil, fmt.Errorf("verifying key must be on curve BN254")
	}
	return &verifier{vk}, nil
}

// LoadVerifier reads a verifying key from disk and returns its verifier.
func LoadVerifier(path string) (ports.ProofVerifier, error) {
	vk, err := LoadVerifyingKey(path)
	if err != nil {
		return nil, fmt.Errorf("loading verifying key %s: %w", path, err)
	}
	return NewVerifier(vk)
}

// LoadVerifyingKey ...
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, err
	}
	return vk, nil
}

// SaveVerifyingKey ...
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = vk.WriteTo(f)
	return err
}

func (v *verifier) NumPublicSignals() int {
	return v.vk.NbPublicWitness()
}

func (v *verifier) Verify(proof ports.ZkProof) (bool, error) {
	if len(proof.Signals) != v.NumPublicSignals() {
		return false, ErrInvalidNumSignals
	}

	p, err := toGnarkProof(proof)
	if err != nil {
		return false, err
	}

	publicWitness, err := toPublicWitness(proof.Signals)
	if err != nil {
		return false, err
	}

	if err := groth16.Verify(p, v.vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// FromGnarkProof converts a BN254 groth16 proof produced by gnark into a
// ZkProof with EVM point ordering.
func FromGnarkProof(proof groth16.Proof, signals []*big.Int) (ports.ZkProof, error) {
	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return ports.ZkProof{}, ErrMalformedProof
	}

	return ports.ZkProof{
		A: [2]*big.Int{
			p.Ar.X.BigInt(new(big.Int)),
			p.Ar.Y.BigInt(new(big.Int)),
		},
		B: [2][2]*big.Int{
			{p.Bs.X.A1.BigInt(new(big.Int)), p.Bs.X.A0.BigInt(new(big.Int))},
			{p.Bs.Y.A1.BigInt(new(big.Int)), p.Bs.Y.A0.BigInt(new(big.Int))},
		},
		C: [2]*big.Int{
			p.Krs.X.BigInt(new(big.Int)),
			p.Krs.Y.BigInt(new(big.Int)),
		},
		Signals: signals,
	}, nil
}

func toGnarkProof(proof ports.ZkProof) (*groth16bn254.Proof, error) {
	for _, n := range []*big.Int{
		proof.A[0], proof.A[1], proof.C[0], proof.C[1],
		proof.B[0][0], proof.B[0][1], proof.B[1][0], proof.B[1][1],
	} {
		if n == nil || n.Sign() < 0 || n.Cmp(fp.Modulus()) >= 0 {
			return nil, ErrMalformedProof
		}
	}

	var ar, krs bn254.G1Affine
	var bs bn254.G2Affine
	ar.X.SetBigInt(proof.A[0])
	ar.Y.SetBigInt(proof.A[1])
	bs.X.A1.SetBigInt(proof.B[0][0])
	bs.X.A0.SetBigInt(proof.B[0][1])
	bs.Y.A1.SetBigInt(proof.B[1][0])
	bs.Y.A0.SetBigInt(proof.B[1][1])
	krs.X.SetBigInt(proof.C[0])
	krs.Y.SetBigInt(proof.C[1])

	if !ar.IsOnCurve() || !krs.IsOnCurve() || !bs.IsOnCurve() ||
		!bs.IsInSubGroup() {
		return nil, ErrMalformedProof
	}

	return &groth16bn254.Proof{Ar: ar, Bs: bs, Krs: krs}, nil
}

func toPublicWitness(signals []*big.Int) (witness.Witness, error) {
	modulus := ecc.BN254.ScalarField()
	for _, s := range signals {
		if s == nil || s.Sign() < 0 || s.Cmp(modulus) >= 0 {
			return nil, ErrSignalOutOfField
		}
	}

	w, err := witness.New(modulus)
	if err != nil {
		return nil, err
	}

	values := make(chan any, len(signals))
	for _, s := range signals {
		values <- s
	}
	close(values)

	if err := w.Fill(len(signals), 0, values); err != nil {
		return nil, err
	}
	return w, nil
}
