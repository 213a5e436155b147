package emailproof

import (
	"context"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// RegistrationProcessor extracts the hash of the payment handle of an
// account from a proof of any email the rail sent to it.
type RegistrationProcessor struct {
	*processor
	layout RegistrationLayout
}

// NewRegistrationProcessor ...
func NewRegistrationProcessor(
	layout RegistrationLayout, opts Opts,
) (*RegistrationProcessor, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	p, err := newProcessor(layout.Layout, opts)
	if err != nil {
		return nil, err
	}
	return &RegistrationProcessor{p, layout}, nil
}

// ProcessProof verifies the bundle, consumes its nullifier and returns the
// proven id hash.
func (p *RegistrationProcessor) ProcessProof(
	ctx context.Context, bundle ports.ProofBundle,
) (*domain.RegistrationFacts, error) {
	signals, err := p.verify(bundle)
	if err != nil {
		return nil, err
	}

	nullifier := p.nullifier(signals)
	if err := p.consume(ctx, nullifier); err != nil {
		return nil, err
	}

	return &domain.RegistrationFacts{
		IDHash:    p.hash(signals, p.layout.IDHash),
		Nullifier: nullifier,
	}, nil
}
