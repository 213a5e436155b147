package escrow

import (
	"github.com/zkramp/ramp-daemon/internal/core/domain"
	"github.com/zkramp/ramp-daemon/internal/core/ports"
)

// ProcessorRegistry resolves payment processors by verifier id.
type ProcessorRegistry interface {
	PaymentProcessor(id string) (ports.PaymentProcessor, error)
}

// EventPublisher is notified of the events of every committed operation.
type EventPublisher interface {
	PublishEvents(events ...domain.Event)
}

// DepositInfo is a deposit along with the liquidity that new intents can
// reserve and the part of the locked liquidity that a prune would free.
type DepositInfo struct {
	*domain.Deposit
	AvailableLiquidity   uint64
	ReclaimableLiquidity uint64
}
