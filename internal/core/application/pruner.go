package application

import (
	"context"
	"time"

	"github.com/zkramp/ramp-daemon/internal/core/application/pruner"
)

type PrunerService interface {
	Start()
	Stop()
	IsRunning() bool
	Sweep(ctx context.Context) (int, error)
}

func NewPrunerService(
	escrowSvc EscrowService, caller string,
	interval time.Duration, prunesPerSecond int,
) (PrunerService, error) {
	return pruner.NewService(escrowSvc, caller, interval, prunesPerSecond)
}
