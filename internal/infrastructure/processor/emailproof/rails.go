package emailproof

import (
	"fmt"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// Rail is a fiat payment network whose emails can be proven.
type Rail struct {
	Name          string
	Currency      string
	DefaultSender string
	Send          SendLayout
	Registration  RegistrationLayout
}

func nullifierAt(src Source, i int) *Field {
	f := At(src, i)
	return &f
}

var (
	// Venmo is the USD rail proven with a single circuit per email.
	Venmo = Rail{
		Name:          "venmo",
		Currency:      "USD",
		DefaultSender: "venmo@venmo.com",
		Send: SendLayout{
			Layout: Layout{
				MainSignals: 12,
				KeyHash:     At(MainProof, 0),
				FromAddress: Span(MainProof, 1, 3),
				Nullifier:   nullifierAt(MainProof, 10),
			},
			Amount:      Span(MainProof, 4, 5),
			Timestamp:   Span(MainProof, 6, 7),
			PayeeIDHash: At(MainProof, 8),
			PayerIDHash: At(MainProof, 9),
			IntentHash:  At(MainProof, 11),
		},
		Registration: RegistrationLayout{
			Layout: Layout{
				MainSignals: 5,
				KeyHash:     At(MainProof, 0),
				FromAddress: Span(MainProof, 1, 3),
			},
			IDHash: At(MainProof, 4),
		},
	}

	// Garanti is the TRY bank transfer rail. The email body is too large
	// for a single circuit, so its hashing is proven apart and chained to
	// the header proof through the intermediate and final hash states.
	Garanti = Rail{
		Name:          "garanti",
		Currency:      "TRY",
		DefaultSender: "garanti@info.garantibbva.com.tr",
		Send: SendLayout{
			Layout: Layout{
				MainSignals:     11,
				BodyHashSignals: 7,
				KeyHash:         At(MainProof, 0),
				FromAddress:     Span(MainProof, 1, 5),
				SharedHashes:    []SharedHash{{Main: 8, Body: 0}, {Main: 9, Body: 1}},
				Nullifier:       nullifierAt(MainProof, 10),
			},
			Timestamp:   Span(MainProof, 6, 7),
			Amount:      Span(BodyHashProof, 2, 3),
			PayeeIDHash: At(BodyHashProof, 4),
			PayerIDHash: At(BodyHashProof, 5),
			IntentHash:  At(BodyHashProof, 6),
		},
		Registration: RegistrationLayout{
			Layout: Layout{
				MainSignals:     8,
				BodyHashSignals: 3,
				KeyHash:         At(MainProof, 0),
				FromAddress:     Span(MainProof, 1, 5),
				SharedHashes:    []SharedHash{{Main: 6, Body: 0}, {Main: 7, Body: 1}},
			},
			IDHash: At(BodyHashProof, 2),
		},
	}

	rails = map[string]Rail{
		Venmo.Name:   Venmo,
		Garanti.Name: Garanti,
	}
)

// RailByName ...
func RailByName(name string) (Rail, error) {
	r, ok := rails[name]
	if !ok {
		return Rail{}, fmt.Errorf("%w: %s", ErrUnknownRail, name)
	}
	return r, nil
}

// SupportedRails returns the names of the known rails.
func SupportedRails() []string {
	return []string{Venmo.Name, Garanti.Name}
}

// NewSendProcessor returns the payment processor of the rail. The processor
// id and sender default to the rail name and sender.
func (r Rail) NewSendProcessor(opts Opts) (*SendProcessor, error) {
	return NewSendProcessor(r.Send, SendOpts{
		Opts:           r.withDefaults(opts),
		Currency:       r.Currency,
		AmountDecimals: domain.AmountDecimals,
	})
}

// NewRegistrationProcessor returns the registration processor of the rail.
func (r Rail) NewRegistrationProcessor(opts Opts) (*RegistrationProcessor, error) {
	return NewRegistrationProcessor(r.Registration, r.withDefaults(opts))
}

func (r Rail) withDefaults(opts Opts) Opts {
	if opts.ID == "" {
		opts.ID = r.Name
	}
	if opts.SenderAddress == "" {
		opts.SenderAddress = r.DefaultSender
	}
	return opts
}
