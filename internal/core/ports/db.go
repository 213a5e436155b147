package ports

import (
	"context"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

// RepoManager interface defines the methods for deposits, intents, accounts,
// nullifiers, balances and events.
type RepoManager interface {
	DepositRepository() domain.DepositRepository
	IntentRepository() domain.IntentRepository
	AccountRepository() domain.AccountRepository
	NullifierRepository() domain.NullifierRepository
	BalanceRepository() domain.BalanceRepository
	EventRepository() domain.EventRepository

	Close()

	// RunTransaction runs the given handler in a transaction spanning all
	// the repositories. The changes made by the handler are either all
	// committed or all discarded if it returns an error or panics.
	RunTransaction(
		ctx context.Context,
		readOnly bool,
		handler func(ctx context.Context) (interface{}, error),
	) (interface{}, error)
}

// Transaction interface defines the method to commit or discard a database transaction.
type Transaction interface {
	Commit() error
	Discard()
}
