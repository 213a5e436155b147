package domain

import "context"

// BalanceRepository is the abstraction for any kind of database intended to
// persist token Balances.
type BalanceRepository interface {
	// GetBalance returns the balance of owner for token. A missing balance
	// is returned as zero.
	GetBalance(ctx context.Context, owner, token string) (*Balance, error)
	// GetBalancesForOwner returns all the non-zero balances of owner.
	GetBalancesForOwner(ctx context.Context, owner string) ([]*Balance, error)
	// UpdateBalance allows to commit multiple changes to the same balance in
	// a transactional way.
	UpdateBalance(
		ctx context.Context,
		owner, token string,
		updateFn func(b *Balance) (*Balance, error),
	) error
}
