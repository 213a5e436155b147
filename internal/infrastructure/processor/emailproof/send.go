package emailproof

import (
	"context"
	"fmt"
	"math"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/pkg/signalutil"
)

// SendOpts ...
type SendOpts struct {
	Opts
	Currency string
	// Precision of the proven amount, matching that of token amounts.
	AmountDecimals int
}

// SendProcessor extracts the facts of a fiat payment from a proof of the
// payment confirmation email.
type SendProcessor struct {
	*processor
	layout         SendLayout
	currency       string
	amountDecimals int
}

// NewSendProcessor ...
func NewSendProcessor(layout SendLayout, opts SendOpts) (*SendProcessor, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	if opts.Currency == "" {
		return nil, ErrMissingCurrency
	}
	if opts.AmountDecimals < 0 {
		return nil, fmt.Errorf("amount decimals must not be negative")
	}

	p, err := newProcessor(layout.Layout, opts.Opts)
	if err != nil {
		return nil, err
	}

	return &SendProcessor{p, layout, opts.Currency, opts.AmountDecimals}, nil
}

// Currency ...
func (p *SendProcessor) Currency() string {
	return p.currency
}

// ProcessProof verifies the bundle, consumes its nullifier and returns the
// payment it proves. The nullifier is consumed only if all the facts could
// be decoded.
func (p *SendProcessor) ProcessProof(
	ctx context.Context, bundle ports.ProofBundle,
) (*domain.SettlementFacts, error) {
	signals, err := p.verify(bundle)
	if err != nil {
		return nil, err
	}

	amount, err := signalutil.UnpackUint(
		signals.get(p.layout.Amount), p.amountDecimals,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %s", domain.ErrInvalidSignals, err)
	}
	if !amount.IsUint64() {
		return nil, fmt.Errorf("%w: amount overflow", domain.ErrInvalidSignals)
	}

	timestamp, err := signalutil.UnpackUint(signals.get(p.layout.Timestamp), 0)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %s", domain.ErrInvalidSignals, err)
	}
	buffer := p.TimestampBuffer()
	if !timestamp.IsInt64() || timestamp.Int64() > math.MaxInt64-buffer {
		return nil, fmt.Errorf("%w: timestamp overflow", domain.ErrInvalidSignals)
	}

	nullifier := p.nullifier(signals)
	if err := p.consume(ctx, nullifier); err != nil {
		return nil, err
	}

	return &domain.SettlementFacts{
		Amount:      amount.Uint64(),
		Timestamp:   timestamp.Int64() + buffer,
		PayeeIDHash: p.hash(signals, p.layout.PayeeIDHash),
		PayerIDHash: p.hash(signals, p.layout.PayerIDHash),
		IntentHash:  p.hash(signals, p.layout.IntentHash),
		Nullifier:   nullifier,
	}, nil
}
