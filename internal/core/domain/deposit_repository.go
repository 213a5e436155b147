package domain

import "context"

// DepositRepository is the abstraction for any kind of database intended to
// persist Deposits.
type DepositRepository interface {
	// AddDeposit adds the given deposit to the repository. It fails if a
	// deposit with the same id already exists.
	AddDeposit(ctx context.Context, deposit *Deposit) error
	// GetDeposit returns the deposit with the given id.
	GetDeposit(ctx context.Context, id uint64) (*Deposit, error)
	// GetAllDeposits returns all the deposits sorted by id.
	GetAllDeposits(ctx context.Context) ([]*Deposit, error)
	// GetDepositsForDepositor returns the deposits of the given depositor.
	GetDepositsForDepositor(
		ctx context.Context, depositor string,
	) ([]*Deposit, error)
	// CountDeposits returns the number of deposits ever created.
	CountDeposits(ctx context.Context) (uint64, error)
	// UpdateDeposit allows to commit multiple changes to the same deposit in a
	// transactional way.
	UpdateDeposit(
		ctx context.Context,
		id uint64,
		updateFn func(d *Deposit) (*Deposit, error),
	) error
}
