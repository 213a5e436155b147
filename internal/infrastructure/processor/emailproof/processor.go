// Package emailproof implements the proof processors of the payment rails
// whose evidence is a DKIM signed email, proven with one circuit or with a
// circuit for the headers and one for the body hash.
package emailproof

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/pkg/signalutil"
)

// Opts are the dependencies and settings shared by every processor.
type Opts struct {
	ID               string
	MainVerifier     ports.ProofVerifier
	BodyHashVerifier ports.ProofVerifier
	KeyHashes        ports.KeyHashAdapter
	Nullifiers       ports.NullifierRegistry
	SenderAddress    string
	TimestampBuffer  int64
}

func (o Opts) validate(l Layout) error {
	if o.ID == "" {
		return ErrMissingID
	}
	if o.MainVerifier == nil {
		return ErrMissingVerifier
	}
	if n := o.MainVerifier.NumPublicSignals(); n != l.MainSignals {
		return fmt.Errorf(
			"%w: main verifier expects %d, layout has %d",
			ErrVerifierSignalsMismatch, n, l.MainSignals,
		)
	}
	if l.HasBodyHashProof() {
		if o.BodyHashVerifier == nil {
			return ErrMissingVerifier
		}
		if n := o.BodyHashVerifier.NumPublicSignals(); n != l.BodyHashSignals {
			return fmt.Errorf(
				"%w: body hash verifier expects %d, layout has %d",
				ErrVerifierSignalsMismatch, n, l.BodyHashSignals,
			)
		}
	} else if o.BodyHashVerifier != nil {
		return ErrUnexpectedVerifier
	}
	if o.KeyHashes == nil {
		return ErrMissingKeyHashAdapter
	}
	if o.Nullifiers == nil {
		return ErrMissingNullifierRegistry
	}
	if o.SenderAddress == "" {
		return domain.ErrInvalidSenderAddress
	}
	if o.TimestampBuffer < 0 {
		return domain.ErrInvalidTimestampBuffer
	}
	return nil
}

// processor holds the checks common to send and registration proofs.
type processor struct {
	id               string
	layout           Layout
	mainVerifier     ports.ProofVerifier
	bodyHashVerifier ports.ProofVerifier
	keyHashes        ports.KeyHashAdapter
	nullifiers       ports.NullifierRegistry

	lock            *sync.RWMutex
	senderAddress   string
	timestampBuffer int64
}

func newProcessor(layout Layout, opts Opts) (*processor, error) {
	if err := layout.validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(layout); err != nil {
		return nil, err
	}

	return &processor{
		id:               opts.ID,
		layout:           layout,
		mainVerifier:     opts.MainVerifier,
		bodyHashVerifier: opts.BodyHashVerifier,
		keyHashes:        opts.KeyHashes,
		nullifiers:       opts.Nullifiers,
		lock:             &sync.RWMutex{},
		senderAddress:    opts.SenderAddress,
		timestampBuffer:  opts.TimestampBuffer,
	}, nil
}

func (p *processor) ID() string {
	return p.id
}

func (p *processor) KeyHashAdapter() ports.KeyHashAdapter {
	return p.keyHashes
}

func (p *processor) SenderAddress() string {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.senderAddress
}

func (p *processor) SetSenderAddress(sender string) error {
	if sender == "" {
		return domain.ErrInvalidSenderAddress
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.senderAddress = sender
	return nil
}

func (p *processor) TimestampBuffer() int64 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.timestampBuffer
}

func (p *processor) SetTimestampBuffer(buffer int64) error {
	if buffer < 0 {
		return domain.ErrInvalidTimestampBuffer
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.timestampBuffer = buffer
	return nil
}

// verify checks the proofs of the bundle, the hash state they share, the
// mail-server key hash and the email sender. It returns the verified
// signals.
func (p *processor) verify(bundle ports.ProofBundle) (*publicSignals, error) {
	if err := checkSignals(bundle.Main.Signals, p.layout.MainSignals); err != nil {
		return nil, err
	}
	if err := verifyProof(
		p.mainVerifier, bundle.Main, domain.ErrInvalidProof,
	); err != nil {
		return nil, err
	}

	signals := &publicSignals{main: bundle.Main.Signals}

	if p.layout.HasBodyHashProof() {
		if bundle.BodyHash == nil {
			return nil, fmt.Errorf(
				"%w: missing body hash proof", domain.ErrInvalidBodyHashProof,
			)
		}
		if err := checkSignals(
			bundle.BodyHash.Signals, p.layout.BodyHashSignals,
		); err != nil {
			return nil, err
		}
		if err := verifyProof(
			p.bodyHashVerifier, *bundle.BodyHash, domain.ErrInvalidBodyHashProof,
		); err != nil {
			return nil, err
		}

		signals.body = bundle.BodyHash.Signals
		for _, h := range p.layout.SharedHashes {
			if signals.main[h.Main].Cmp(signals.body[h.Body]) != 0 {
				return nil, domain.ErrInvalidIntermediateOrOutputHash
			}
		}
	} else if bundle.BodyHash != nil {
		return nil, fmt.Errorf(
			"%w: unexpected body hash proof", domain.ErrInvalidSignals,
		)
	}

	keyHash := domain.HashFromBigInt(signals.first(p.layout.KeyHash))
	if !p.keyHashes.IsKeyHash(keyHash) {
		return nil, domain.ErrInvalidMailserverKeyHash
	}

	from, err := signalutil.UnpackString(signals.get(p.layout.FromAddress))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidEmailFromAddress, err)
	}
	if from != p.SenderAddress() {
		return nil, domain.ErrInvalidEmailFromAddress
	}

	return signals, nil
}

// nullifier returns the unique identifier of the proven email.
func (p *processor) nullifier(signals *publicSignals) string {
	if p.layout.Nullifier != nil {
		return domain.HashFromBigInt(signals.first(*p.layout.Nullifier))
	}

	all := append(append([]*big.Int{}, signals.main...), signals.body...)
	buf := make([]byte, 0, len(all)*common.HashLength)
	for _, s := range all {
		buf = append(buf, common.BigToHash(s).Bytes()...)
	}
	return crypto.Keccak256Hash(buf).Hex()
}

// consume marks the nullifier as used, failing on replay.
func (p *processor) consume(ctx context.Context, nullifier string) error {
	return p.nullifiers.Consume(ctx, p.id, nullifier)
}

func (p *processor) hash(signals *publicSignals, f Field) string {
	return domain.HashFromBigInt(signals.first(f))
}

func checkSignals(signals []*big.Int, expected int) error {
	if len(signals) != expected {
		return fmt.Errorf(
			"%w: expected %d signals, got %d",
			domain.ErrInvalidSignals, expected, len(signals),
		)
	}
	for i, s := range signals {
		if s == nil || s.Sign() < 0 {
			return fmt.Errorf("%w: signal %d", domain.ErrInvalidSignals, i)
		}
	}
	return nil
}

func verifyProof(
	verifier ports.ProofVerifier, proof ports.ZkProof, invalidErr error,
) error {
	ok, err := verifier.Verify(proof)
	if err != nil {
		return fmt.Errorf("%w: %s", invalidErr, err)
	}
	if !ok {
		return invalidErr
	}
	return nil
}
