package zkverifier

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// SignalsCircuit is a circuit exposing an arbitrary vector of public
// signals, bound together by a private digest. It stands in for the email
// circuits in development setups, where the prover is trusted to emit the
// signals of a real email.
type SignalsCircuit struct {
	Signals []frontend.Variable `gnark:",public"`
	Digest  frontend.Variable
}

// Define declares the circuit's constraints.
func (c *SignalsCircuit) Define(api frontend.API) error {
	var acc frontend.Variable = 0
	for i, s := range c.Signals {
		acc = api.Add(acc, api.Mul(s, i+1))
	}
	api.AssertIsEqual(acc, c.Digest)
	return nil
}

// DevProver generates proofs for a SignalsCircuit of fixed size.
type DevProver struct {
	numSignals int
	ccs        constraint.ConstraintSystem
	pk         groth16.ProvingKey
	vk         groth16.VerifyingKey
}

// NewDevProver compiles a SignalsCircuit with the given number of signals
// and runs an insecure groth16 setup for it.
func NewDevProver(numSignals int) (*DevProver, error) {
	circuit := &SignalsCircuit{Signals: make([]frontend.Variable, numSignals)}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}

	return &DevProver{numSignals, ccs, pk, vk}, nil
}

// VerifyingKey ...
func (p *DevProver) VerifyingKey() groth16.VerifyingKey {
	return p.vk
}

// Verifier returns a verifier for the proofs of this prover.
func (p *DevProver) Verifier() (ports.ProofVerifier, error) {
	return NewVerifier(p.vk)
}

// Prove returns a proof for the given signals.
func (p *DevProver) Prove(signals []*big.Int) (ports.ZkProof, error) {
	if len(signals) != p.numSignals {
		return ports.ZkProof{}, ErrInvalidNumSignals
	}

	modulus := ecc.BN254.ScalarField()
	digest := new(big.Int)
	assignment := &SignalsCircuit{Signals: make([]frontend.Variable, p.numSignals)}
	for i, s := range signals {
		assignment.Signals[i] = s
		digest.Add(digest, new(big.Int).Mul(s, big.NewInt(int64(i+1))))
	}
	assignment.Digest = digest.Mod(digest, modulus)

	w, err := frontend.NewWitness(assignment, modulus)
	if err != nil {
		return ports.ZkProof{}, fmt.Errorf("witness creation failed: %w", err)
	}

	proof, err := groth16.Prove(p.ccs, p.pk, w)
	if err != nil {
		return ports.ZkProof{}, fmt.Errorf("proof generation failed: %w", err)
	}

	return FromGnarkProof(proof, signals)
}
