package processor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/processor/emailproof"
)

type paymentOnly struct {
	id string
}

func (p paymentOnly) ID() string       { return p.id }
func (p paymentOnly) Currency() string { return "EUR" }
func (p paymentOnly) ProcessProof(
	context.Context, ports.ProofBundle,
) (*domain.SettlementFacts, error) {
	return nil, domain.ErrInvalidProof
}

type mockVerifier struct {
	signals int
}

func (v mockVerifier) NumPublicSignals() int { return v.signals }
func (v mockVerifier) Verify(ports.ZkProof) (bool, error) {
	return true, nil
}

type nullifiers struct{}

func (nullifiers) Consume(context.Context, string, string) error { return nil }
func (nullifiers) IsNullified(context.Context, string) (bool, error) {
	return false, nil
}

func TestRegistry(t *testing.T) {
	registry := processor.NewRegistry()

	keyHashes, err := emailproof.NewKeyHashAdapter()
	require.NoError(t, err)
	opts := emailproof.Opts{
		KeyHashes:  keyHashes,
		Nullifiers: nullifiers{},
	}

	send := opts
	send.MainVerifier = mockVerifier{emailproof.Venmo.Send.MainSignals}
	sendProcessor, err := emailproof.Venmo.NewSendProcessor(send)
	require.NoError(t, err)

	registration := opts
	registration.MainVerifier = mockVerifier{emailproof.Venmo.Registration.MainSignals}
	registrationProcessor, err := emailproof.Venmo.NewRegistrationProcessor(registration)
	require.NoError(t, err)

	require.NoError(t, registry.AddPaymentProcessor(sendProcessor))
	require.NoError(t, registry.AddRegistrationProcessor(registrationProcessor))
	require.NoError(t, registry.AddPaymentProcessor(paymentOnly{"sepa"}))

	require.Error(t, registry.AddPaymentProcessor(sendProcessor))
	require.Error(t, registry.AddRegistrationProcessor(registrationProcessor))

	require.Equal(t, []string{"sepa", "venmo"}, registry.IDs())

	p, err := registry.PaymentProcessor("venmo")
	require.NoError(t, err)
	require.Equal(t, "USD", p.Currency())
	_, err = registry.RegistrationProcessor("venmo")
	require.NoError(t, err)

	_, err = registry.PaymentProcessor("paypal")
	require.ErrorIs(t, err, domain.ErrUnknownVerifier)
	_, err = registry.RegistrationProcessor("sepa")
	require.ErrorIs(t, err, domain.ErrUnknownVerifier)

	admins, err := registry.Admins("venmo")
	require.NoError(t, err)
	require.Len(t, admins, 2)

	// Both processors of the rail share the same key hashes.
	adapters, err := registry.KeyHashAdapters("venmo")
	require.NoError(t, err)
	require.Len(t, adapters, 1)

	// Processors without settings have no admins.
	_, err = registry.Admins("sepa")
	require.ErrorIs(t, err, domain.ErrUnknownVerifier)
}
