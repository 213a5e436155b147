package application

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zkramp/ramp-daemon/internal/core/application/escrow"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// DepositInfo is a deposit along with its currently available liquidity.
type DepositInfo = escrow.DepositInfo

type EscrowService interface {
	EscrowAddress() string
	Params() domain.Params
	SetParams(params domain.Params) error

	// Deposit pool
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
	GetDeposit(ctx context.Context, id uint64) (*DepositInfo, error)
	GetAvailableLiquidity(ctx context.Context, id uint64) (uint64, error)
	ListDeposits(
		ctx context.Context, depositor string, page *domain.Page,
	) ([]*DepositInfo, error)

	// Intent ledger
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
	ListIntents(
		ctx context.Context, depositID uint64, taker string, page *domain.Page,
	) ([]*domain.Intent, error)
	ListExpiredIntents(ctx context.Context) ([]*domain.Intent, error)

	// Ledger
	GetBalances(ctx context.Context, owner string) ([]*domain.Balance, error)
	ListEvents(
		ctx context.Context, filter domain.EventFilter,
	) ([]domain.Event, error)
}

func NewEscrowService(
	repoManager ports.RepoManager, processors *processor.Registry,
	pubsubSvc PubSubService, clock ports.Clock, lock *sync.Mutex,
	escrowAddress string, params domain.Params,
) (EscrowService, error) {
	return escrow.NewService(
		repoManager, processors, pubsubSvc, clock, lock, escrowAddress, params,
	)
}
