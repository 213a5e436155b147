package escrow_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/zkramp/ramp-daemon/internal/core/application/escrow"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type escrowService interface {
	Params() domain.Params
	SetParams(params domain.Params) error
	CreateDeposit(
		ctx context.Context, caller, token string, amount uint64,
		rates map[string]decimal.Decimal, verifiers []string,
	) (*domain.Deposit, error)
	IncreaseDeposit(
		ctx context.Context, caller string, id, amount uint64,
	) (*domain.Deposit, error)
	WithdrawDeposit(
		ctx context.Context, caller string, id uint64, allowPending bool,
	) (uint64, error)
	SetConversionRate(
		ctx context.Context, caller string, id uint64,
		currency string, rate decimal.Decimal,
	) (*domain.Deposit, error)
	GetAvailableLiquidity(ctx context.Context, id uint64) (uint64, error)
	GetDeposit(ctx context.Context, id uint64) (*escrow.DepositInfo, error)
	SignalIntent(
		ctx context.Context, caller string, depositID, amount uint64,
		recipient, verifier string,
	) (*domain.Intent, error)
	CancelIntent(ctx context.Context, caller, id string) (*domain.Intent, error)
	PruneExpiredIntent(ctx context.Context, caller, id string) error
	PruneExpiredIntents(ctx context.Context, caller string) ([]string, error)
	FulfillIntent(
		ctx context.Context, caller, id string, bundle ports.ProofBundle,
	) (*domain.Intent, error)
	ReleaseFundsToTaker(
		ctx context.Context, caller, id string,
	) (*domain.Intent, error)
	GetIntent(ctx context.Context, id string) (*domain.Intent, error)
	ListExpiredIntents(ctx context.Context) ([]*domain.Intent, error)
	ListEvents(
		ctx context.Context, filter domain.EventFilter,
	) ([]domain.Event, error)
}

// **** Clock ****

type mockClock struct {
	lock *sync.Mutex
	now  time.Time
}

func newMockClock() *mockClock {
	return &mockClock{&sync.Mutex{}, time.Unix(1700000000, 0)}
}

func (c *mockClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *mockClock) advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
}

// **** Processors ****

// mockPaymentProcessor returns the facts set by the test for the next proof,
// consuming their nullifier like the real processors do.
type mockPaymentProcessor struct {
	id         string
	currency   string
	nullifiers ports.NullifierRegistry

	facts *domain.SettlementFacts
	err   error
}

func (p *mockPaymentProcessor) ID() string {
	return p.id
}

func (p *mockPaymentProcessor) Currency() string {
	return p.currency
}

func (p *mockPaymentProcessor) ProcessProof(
	ctx context.Context, _ ports.ProofBundle,
) (*domain.SettlementFacts, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := p.nullifiers.Consume(ctx, p.id, p.facts.Nullifier); err != nil {
		return nil, err
	}
	facts := *p.facts
	return &facts, nil
}

type mockProcessorRegistry struct {
	processors map[string]ports.PaymentProcessor
}

func (r *mockProcessorRegistry) PaymentProcessor(
	id string,
) (ports.PaymentProcessor, error) {
	p, ok := r.processors[id]
	if !ok {
		return nil, domain.ErrUnknownVerifier
	}
	return p, nil
}

// **** PubSub ****

type mockPublisher struct {
	mock.Mock

	lock   sync.Mutex
	events []domain.Event
}

func (m *mockPublisher) PublishEvents(events ...domain.Event) {
	m.lock.Lock()
	m.events = append(m.events, events...)
	m.lock.Unlock()
	m.Called(len(events))
}

func (m *mockPublisher) published() []domain.Event {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]domain.Event{}, m.events...)
}

// blockingPublisher holds every publication until released.
type blockingPublisher struct {
	release chan struct{}

	lock   sync.Mutex
	topics []string
}

func (p *blockingPublisher) Publish(topic string, _ []byte) error {
	<-p.release
	p.lock.Lock()
	defer p.lock.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *blockingPublisher) Close() {}
