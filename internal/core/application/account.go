package application

import (
	"context"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/application/account"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

type AccountService interface {
	Register(
		ctx context.Context, caller, verifier string, bundle ports.ProofBundle,
	) (*domain.Account, error)
	AddToDenylist(ctx context.Context, caller, idHash string) (*domain.Account, error)
	RemoveFromDenylist(
		ctx context.Context, caller, idHash string,
	) (*domain.Account, error)
	AddToAllowlist(ctx context.Context, caller, idHash string) (*domain.Account, error)
	RemoveFromAllowlist(
		ctx context.Context, caller, idHash string,
	) (*domain.Account, error)
	SetAllowlistEnabled(
		ctx context.Context, caller string, enabled bool,
	) (*domain.Account, error)
	GetAccount(ctx context.Context, address string) (*domain.Account, error)
	GetAccountByIDHash(ctx context.Context, idHash string) (*domain.Account, error)
}

func NewAccountService(
	repoManager ports.RepoManager, processors *processor.Registry,
	pubsubSvc PubSubService, clock ports.Clock, lock *sync.Mutex,
) (AccountService, error) {
	return account.NewService(repoManager, processors, pubsubSvc, clock, lock)
}
