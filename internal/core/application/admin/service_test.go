package admin_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zkramp/ramp-daemon/internal/core/application/admin"
	"github.com/zkramp/ramp-daemon/internal/core/application/nullifier"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/processor/emailproof"
	"github.com/zkramp/ramp-daemon/internal/infrastructure/storage/db/inmemory"
)

const (
	owner    = "0x00000000000000000000000000000000000000f1"
	stranger = "0x4000000000000000000000000000000000000004"
	token    = "0x00000000000000000000000000000000000000a1"
	feeTaker = "0x000000000000000000000000000000000000fee0"
)

var (
	ctx     = context.Background()
	keyHash = "0x" + strings.Repeat("4b", 32)

	testParams = domain.Params{IntentExpirationPeriod: 3600}
)

type adminService interface {
	Owner() string
	IsOwner(caller string) bool
	GetParams(ctx context.Context) domain.Params
	UpdateParams(
		ctx context.Context, caller string, updateFn func(p *domain.Params),
	) (domain.Params, error)
	Fund(
		ctx context.Context, caller, to, token string, amount uint64,
	) (*domain.Balance, error)
	ListProcessors(ctx context.Context) ([]admin.ProcessorInfo, error)
	AddKeyHash(ctx context.Context, caller, processorID, keyHash string) error
	RemoveKeyHash(ctx context.Context, caller, processorID, keyHash string) error
	SetSenderAddress(ctx context.Context, caller, processorID, sender string) error
	SetTimestampBuffer(
		ctx context.Context, caller, processorID string, buffer int64,
	) error
	AddNullifierWriter(ctx context.Context, caller, writer string) error
	RemoveNullifierWriter(ctx context.Context, caller, writer string) error
	ListNullifierWriters(ctx context.Context) ([]string, error)
}

type clock struct{}

func (clock) Now() time.Time {
	return time.Unix(1700000000, 0)
}

type paramsStore struct {
	params domain.Params
}

func (s *paramsStore) Params() domain.Params {
	return s.params
}

func (s *paramsStore) SetParams(params domain.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.params = params
	return nil
}

// railProcessor is both the payment and the registration processor of a
// rail, sharing its settings like the email proof processors do.
type railProcessor struct {
	id        string
	keyHashes ports.KeyHashAdapter
	sender    string
	buffer    int64
}

func (p *railProcessor) ID() string                           { return p.id }
func (p *railProcessor) Currency() string                     { return "USD" }
func (p *railProcessor) KeyHashAdapter() ports.KeyHashAdapter { return p.keyHashes }
func (p *railProcessor) SenderAddress() string                { return p.sender }
func (p *railProcessor) TimestampBuffer() int64               { return p.buffer }

func (p *railProcessor) SetSenderAddress(sender string) error {
	if sender == "" {
		return domain.ErrInvalidSenderAddress
	}
	p.sender = sender
	return nil
}

func (p *railProcessor) SetTimestampBuffer(buffer int64) error {
	if buffer < 0 {
		return domain.ErrInvalidTimestampBuffer
	}
	p.buffer = buffer
	return nil
}

func (p *railProcessor) ProcessProof(
	context.Context, ports.ProofBundle,
) (*domain.SettlementFacts, error) {
	return nil, domain.ErrInvalidProof
}

type publisher struct {
	events []domain.Event
}

func (p *publisher) PublishEvents(events ...domain.Event) {
	p.events = append(p.events, events...)
}

func newTestService(t *testing.T) (adminService, *paramsStore, *publisher) {
	repoManager := inmemory.NewRepoManager()

	keyHashes, err := emailproof.NewKeyHashAdapter(keyHash)
	require.NoError(t, err)
	registry := processor.NewRegistry()
	require.NoError(t, registry.AddPaymentProcessor(&railProcessor{
		id: "venmo", keyHashes: keyHashes, sender: "venmo@venmo.com", buffer: 30,
	}))

	nullifiers, err := nullifier.NewRegistry(repoManager, clock{})
	require.NoError(t, err)
	require.NoError(t, nullifiers.AddWriter(ctx, "venmo"))

	params := &paramsStore{testParams}
	pub := &publisher{}
	svc, err := admin.NewService(
		owner, params, registry, nullifiers, repoManager, pub, clock{},
		&sync.Mutex{},
	)
	require.NoError(t, err)
	return svc, params, pub
}

func TestNewService(t *testing.T) {
	_, err := admin.NewService(
		"owner", &paramsStore{}, processor.NewRegistry(), nil, nil, nil, nil, nil,
	)
	require.Error(t, err)
}

func TestOwnerOnly(t *testing.T) {
	svc, params, _ := newTestService(t)
	require.True(t, svc.IsOwner(strings.ToUpper(owner[2:])))
	require.False(t, svc.IsOwner(stranger))

	tests := []struct {
		name string
		call func() error
	}{
		{
			name: "update params",
			call: func() error {
				_, err := svc.UpdateParams(ctx, stranger, func(p *domain.Params) {
					p.CooldownPeriod = 60
				})
				return err
			},
		},
		{
			name: "fund",
			call: func() error {
				_, err := svc.Fund(ctx, stranger, stranger, token, 100)
				return err
			},
		},
		{
			name: "add key hash",
			call: func() error {
				return svc.AddKeyHash(ctx, stranger, "venmo", keyHash)
			},
		},
		{
			name: "remove key hash",
			call: func() error {
				return svc.RemoveKeyHash(ctx, stranger, "venmo", keyHash)
			},
		},
		{
			name: "set sender address",
			call: func() error {
				return svc.SetSenderAddress(ctx, stranger, "venmo", "evil@venmo.com")
			},
		},
		{
			name: "set timestamp buffer",
			call: func() error {
				return svc.SetTimestampBuffer(ctx, stranger, "venmo", 0)
			},
		},
		{
			name: "add nullifier writer",
			call: func() error {
				return svc.AddNullifierWriter(ctx, stranger, "evil")
			},
		},
		{
			name: "remove nullifier writer",
			call: func() error {
				return svc.RemoveNullifierWriter(ctx, stranger, "venmo")
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), domain.ErrUnauthorized)
		})
	}

	require.Equal(t, testParams, params.Params())
	writers, err := svc.ListNullifierWriters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"venmo"}, writers)
}

func TestUpdateParams(t *testing.T) {
	svc, _, _ := newTestService(t)

	params, err := svc.UpdateParams(ctx, owner, func(p *domain.Params) {
		p.SustainabilityFee = 50
		p.FeeRecipient = feeTaker
	})
	require.NoError(t, err)
	require.Equal(t, uint32(50), params.SustainabilityFee)
	require.Equal(t, params, svc.GetParams(ctx))

	_, err = svc.UpdateParams(ctx, owner, func(p *domain.Params) {
		p.IntentExpirationPeriod = 0
	})
	require.ErrorIs(t, err, domain.ErrInvalidParams)
	require.Equal(t, params, svc.GetParams(ctx))
}

func TestFund(t *testing.T) {
	svc, _, pub := newTestService(t)

	balance, err := svc.Fund(ctx, owner, stranger, token, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance.Amount)

	balance, err = svc.Fund(ctx, owner, stranger, token, 50)
	require.NoError(t, err)
	require.Equal(t, uint64(150), balance.Amount)

	_, err = svc.Fund(ctx, owner, stranger, token, 0)
	require.ErrorIs(t, err, domain.ErrDepositInvalidAmount)
	_, err = svc.Fund(ctx, owner, "stranger", token, 10)
	require.ErrorIs(t, err, domain.ErrAccountInvalidAddress)

	require.Len(t, pub.events, 2)
	require.Equal(t, domain.EventBalanceFunded, pub.events[0].Type)
}

func TestProcessorSettings(t *testing.T) {
	svc, _, _ := newTestService(t)
	newKeyHash := "0x" + strings.Repeat("5c", 32)

	require.NoError(t, svc.AddKeyHash(ctx, owner, "venmo", newKeyHash))
	require.ErrorIs(t,
		svc.AddKeyHash(ctx, owner, "venmo", newKeyHash), domain.ErrKeyHashAlreadyAdded,
	)
	require.ErrorIs(t,
		svc.AddKeyHash(ctx, owner, "paypal", newKeyHash), domain.ErrUnknownVerifier,
	)
	require.NoError(t, svc.RemoveKeyHash(ctx, owner, "venmo", keyHash))
	require.ErrorIs(t,
		svc.RemoveKeyHash(ctx, owner, "venmo", keyHash), domain.ErrKeyHashNotFound,
	)

	require.NoError(t, svc.SetSenderAddress(ctx, owner, "venmo", "new@venmo.com"))
	require.ErrorIs(t,
		svc.SetSenderAddress(ctx, owner, "venmo", ""), domain.ErrInvalidSenderAddress,
	)
	require.NoError(t, svc.SetTimestampBuffer(ctx, owner, "venmo", 60))
	require.ErrorIs(t,
		svc.SetTimestampBuffer(ctx, owner, "venmo", -1), domain.ErrInvalidTimestampBuffer,
	)

	list, err := svc.ListProcessors(ctx)
	require.NoError(t, err)
	require.Equal(t, []admin.ProcessorInfo{{
		ID:              "venmo",
		KeyHashes:       []string{newKeyHash},
		SenderAddress:   "new@venmo.com",
		TimestampBuffer: 60,
	}}, list)
}

func TestNullifierWriters(t *testing.T) {
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.AddNullifierWriter(ctx, owner, "garanti"))
	writers, err := svc.ListNullifierWriters(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"venmo", "garanti"}, writers)

	require.NoError(t, svc.RemoveNullifierWriter(ctx, owner, "venmo"))
	writers, err = svc.ListNullifierWriters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"garanti"}, writers)

	require.Error(t, svc.AddNullifierWriter(ctx, owner, ""))
}
