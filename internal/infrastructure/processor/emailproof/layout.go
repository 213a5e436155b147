package emailproof

import (
	"fmt"
	"math/big"
)

// Source tells which proof of a bundle a signal belongs to.
type Source int

const (
	MainProof Source = iota
	BodyHashProof
)

// Field locates a contiguous run of public signals, [Start, End).
type Field struct {
	Source Source
	Start  int
	End    int
}

// At returns the field made of the single signal at index i.
func At(src Source, i int) Field {
	return Field{src, i, i + 1}
}

// Span returns the field made of the signals from first to last included.
func Span(src Source, first, last int) Field {
	return Field{src, first, last + 1}
}

func (f Field) len() int {
	return f.End - f.Start
}

// SharedHash is a pair of signals carrying the same SHA-256 state in the
// main and in the body hash proof.
type SharedHash struct {
	Main int
	Body int
}

// Layout is the position of the signals common to every email proof.
type Layout struct {
	MainSignals int
	// Zero for rails proven with a single circuit.
	BodyHashSignals int
	KeyHash         Field
	FromAddress     Field
	SharedHashes    []SharedHash
	// Nil means the nullifier is the keccak256 of the abi encoded signals
	// of the main proof followed by those of the body hash proof.
	Nullifier *Field
}

// HasBodyHashProof ...
func (l Layout) HasBodyHashProof() bool {
	return l.BodyHashSignals > 0
}

func (l Layout) validate() error {
	if l.MainSignals <= 0 {
		return fmt.Errorf("%w: main proof must have signals", ErrInvalidLayout)
	}
	if l.BodyHashSignals < 0 {
		return fmt.Errorf("%w: negative body hash signals", ErrInvalidLayout)
	}
	if len(l.SharedHashes) > 0 && !l.HasBodyHashProof() {
		return fmt.Errorf(
			"%w: shared hashes require a body hash proof", ErrInvalidLayout,
		)
	}
	for _, h := range l.SharedHashes {
		if h.Main < 0 || h.Main >= l.MainSignals ||
			h.Body < 0 || h.Body >= l.BodyHashSignals {
			return fmt.Errorf("%w: shared hash out of range", ErrInvalidLayout)
		}
	}

	fields := map[string]Field{
		"key hash":     l.KeyHash,
		"from address": l.FromAddress,
	}
	if l.Nullifier != nil {
		fields["nullifier"] = *l.Nullifier
	}
	if err := l.validateFields(fields); err != nil {
		return err
	}
	if l.KeyHash.len() != 1 {
		return fmt.Errorf("%w: key hash must be a single signal", ErrInvalidLayout)
	}
	if l.Nullifier != nil && l.Nullifier.len() != 1 {
		return fmt.Errorf("%w: nullifier must be a single signal", ErrInvalidLayout)
	}
	return nil
}

func (l Layout) validateFields(fields map[string]Field) error {
	for name, f := range fields {
		size := l.MainSignals
		if f.Source == BodyHashProof {
			size = l.BodyHashSignals
		}
		if f.Start < 0 || f.len() <= 0 || f.End > size {
			return fmt.Errorf("%w: %s out of range", ErrInvalidLayout, name)
		}
	}
	return nil
}

// SendLayout is the position of the signals of a payment proof.
type SendLayout struct {
	Layout
	Amount      Field
	Timestamp   Field
	PayeeIDHash Field
	PayerIDHash Field
	IntentHash  Field
}

func (l SendLayout) validate() error {
	if err := l.Layout.validate(); err != nil {
		return err
	}
	if err := l.validateFields(map[string]Field{
		"amount":        l.Amount,
		"timestamp":     l.Timestamp,
		"payee id hash": l.PayeeIDHash,
		"payer id hash": l.PayerIDHash,
		"intent hash":   l.IntentHash,
	}); err != nil {
		return err
	}
	for _, f := range []Field{l.PayeeIDHash, l.PayerIDHash, l.IntentHash} {
		if f.len() != 1 {
			return fmt.Errorf("%w: hashes must be single signals", ErrInvalidLayout)
		}
	}
	return nil
}

// RegistrationLayout is the position of the signals of a registration
// proof.
type RegistrationLayout struct {
	Layout
	IDHash Field
}

func (l RegistrationLayout) validate() error {
	if err := l.Layout.validate(); err != nil {
		return err
	}
	if err := l.validateFields(map[string]Field{"id hash": l.IDHash}); err != nil {
		return err
	}
	if l.IDHash.len() != 1 {
		return fmt.Errorf("%w: id hash must be a single signal", ErrInvalidLayout)
	}
	return nil
}

// publicSignals are the verified signals of a bundle.
type publicSignals struct {
	main []*big.Int
	body []*big.Int
}

func (s publicSignals) get(f Field) []*big.Int {
	if f.Source == BodyHashProof {
		return s.body[f.Start:f.End]
	}
	return s.main[f.Start:f.End]
}

func (s publicSignals) first(f Field) *big.Int {
	return s.get(f)[0]
}
