package domain

import "context"

// AccountRepository is the abstraction for any kind of database intended to
// persist Accounts.
type AccountRepository interface {
	// AddAccount adds the given account to the repository.
	AddAccount(ctx context.Context, account *Account) error
	// GetAccount returns the account bound to the given address.
	GetAccount(ctx context.Context, address string) (*Account, error)
	// GetAccountByIDHash returns the account bound to the given id hash.
	GetAccountByIDHash(ctx context.Context, idHash string) (*Account, error)
	// GetAllAccounts ...
	GetAllAccounts(ctx context.Context) ([]*Account, error)
	// UpdateAccount allows to commit multiple changes to the same account in
	// a transactional way.
	UpdateAccount(
		ctx context.Context,
		address string,
		updateFn func(a *Account) (*Account, error),
	) error
}
