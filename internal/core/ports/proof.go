package ports

import "math/big"

// ZkProof is a groth16 proof along with its public signals, in the point
// ordering expected by EVM verifiers.
type ZkProof struct {
	A       [2]*big.Int
	B       [2][2]*big.Int
	C       [2]*big.Int
	Signals []*big.Int
}

// ProofBundle is what a taker submits to settle an intent or an account to
// register. BodyHash is set only for rails that split the body hashing
// over two circuits.
type ProofBundle struct {
	Main     ZkProof
	BodyHash *ZkProof
}

// ProofVerifier verifies a proof against a fixed verifying key.
type ProofVerifier interface {
	// NumPublicSignals returns the length of the public signal vector
	// expected by the verifying key.
	NumPublicSignals() int
	// Verify returns whether the proof is valid. An error is returned only
	// for malformed proofs or signals.
	Verify(proof ZkProof) (bool, error)
}
