package ports

import (
	"context"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// PaymentProcessor verifies the proof of a fiat payment on a rail and
// returns the settlement facts extracted from it. The nullifier of the proof
// is consumed through the context's transaction, if any.
type PaymentProcessor interface {
	ID() string
	// Currency is the code of the fiat currency settled by the rail.
	Currency() string
	ProcessProof(
		ctx context.Context, bundle ProofBundle,
	) (*domain.SettlementFacts, error)
}

// RegistrationProcessor verifies the proof that an account owns an
// off-chain payment handle and returns its hash.
type RegistrationProcessor interface {
	ID() string
	ProcessProof(
		ctx context.Context, bundle ProofBundle,
	) (*domain.RegistrationFacts, error)
}

// ProcessorAdmin exposes the owner-gated settings of a processor.
type ProcessorAdmin interface {
	KeyHashAdapter() KeyHashAdapter
	SenderAddress() string
	SetSenderAddress(sender string) error
	TimestampBuffer() int64
	SetTimestampBuffer(buffer int64) error
}

// KeyHashAdapter holds the set of trusted mail-server key hashes of a rail.
type KeyHashAdapter interface {
	IsKeyHash(keyHash string) bool
	AddKeyHash(keyHash string) error
	RemoveKeyHash(keyHash string) error
	KeyHashes() []string
}

// NullifierRegistry is the set of consumed proof identifiers, writable only
// by allowlisted processors.
type NullifierRegistry interface {
	// Consume marks the given nullifier as used on behalf of writer. It
	// fails with domain.ErrNullifierAlreadyUsed on replay.
	Consume(ctx context.Context, writer, nullifier string) error
	IsNullified(ctx context.Context, nullifier string) (bool, error)
}
