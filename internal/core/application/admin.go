package application

import (
	"context"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/application/admin"
	"github.com/zkramp/ramp-daemon/internal/core/application/nullifier"
	"github.com/zkramp/ramp-daemon/internal/core/application/processor"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// ProcessorInfo are the current settings of a proof processor.
type ProcessorInfo = admin.ProcessorInfo

type AdminService interface {
	Owner() string
	IsOwner(caller string) bool

	GetParams(ctx context.Context) domain.Params
	UpdateParams(
		ctx context.Context, caller string, updateFn func(p *domain.Params),
	) (domain.Params, error)
	Fund(
		ctx context.Context, caller, to, token string, amount uint64,
	) (*domain.Balance, error)

	// Processors
	ListProcessors(ctx context.Context) ([]ProcessorInfo, error)
	AddKeyHash(ctx context.Context, caller, processorID, keyHash string) error
	RemoveKeyHash(ctx context.Context, caller, processorID, keyHash string) error
	SetSenderAddress(ctx context.Context, caller, processorID, sender string) error
	SetTimestampBuffer(
		ctx context.Context, caller, processorID string, buffer int64,
	) error

	// Nullifier registry
	AddNullifierWriter(ctx context.Context, caller, writer string) error
	RemoveNullifierWriter(ctx context.Context, caller, writer string) error
	ListNullifierWriters(ctx context.Context) ([]string, error)
}

func NewAdminService(
	owner string, escrowSvc EscrowService, processors *processor.Registry,
	nullifiers *nullifier.Registry, repoManager ports.RepoManager,
	pubsubSvc PubSubService, clock ports.Clock, lock *sync.Mutex,
) (AdminService, error) {
	return admin.NewService(
		owner, escrowSvc, processors, nullifiers, repoManager, pubsubSvc, clock, lock,
	)
}
