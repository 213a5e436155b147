package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type accountInmemoryStore struct {
	accounts         map[string]domain.Account
	accountsByIDHash map[string]string
	locker           *sync.RWMutex
}

type accountRepositoryImpl struct {
	transactional
	store *accountInmemoryStore
}

// NewAccountRepositoryImpl returns a new inmemory AccountRepository
// implementation.
func NewAccountRepositoryImpl() domain.AccountRepository {
	return newAccountRepositoryImpl()
}

func newAccountRepositoryImpl() *accountRepositoryImpl {
	return &accountRepositoryImpl{
		store: &accountInmemoryStore{
			accounts:         make(map[string]domain.Account),
			accountsByIDHash: make(map[string]string),
			locker:           &sync.RWMutex{},
		},
	}
}

func (r *accountRepositoryImpl) AddAccount(
	ctx context.Context, account *domain.Account,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.accounts[account.Address]; ok {
		return domain.ErrAccountAlreadyExists
	}

	r.store.accounts[account.Address] = cloneAccount(*account)
	r.store.accountsByIDHash[account.IDHash] = account.Address
	address, idHash := account.Address, account.IDHash
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.accounts, address)
		delete(r.store.accountsByIDHash, idHash)
	})
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	_ context.Context, address string,
) (*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.getAccount(domain.NormalizeAddress(address))
}

func (r *accountRepositoryImpl) GetAccountByIDHash(
	_ context.Context, idHash string,
) (*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	address, ok := r.store.accountsByIDHash[domain.NormalizeHash(idHash)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return r.getAccount(address)
}

func (r *accountRepositoryImpl) GetAllAccounts(
	_ context.Context,
) ([]*domain.Account, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		a := cloneAccount(account)
		accounts = append(accounts, &a)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].RegisteredAt < accounts[j].RegisteredAt
	})
	return accounts, nil
}

func (r *accountRepositoryImpl) UpdateAccount(
	ctx context.Context,
	address string,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	address = domain.NormalizeAddress(address)
	current, ok := r.store.accounts[address]
	if !ok {
		return domain.ErrAccountNotFound
	}

	account := cloneAccount(current)
	updatedAccount, err := updateFn(&account)
	if err != nil {
		return err
	}

	r.store.accounts[address] = cloneAccount(*updatedAccount)
	if updatedAccount.IDHash != current.IDHash {
		delete(r.store.accountsByIDHash, current.IDHash)
		r.store.accountsByIDHash[updatedAccount.IDHash] = address
	}
	newIDHash := updatedAccount.IDHash
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.accounts[address] = current
		delete(r.store.accountsByIDHash, newIDHash)
		r.store.accountsByIDHash[current.IDHash] = address
	})
	return nil
}

func (r *accountRepositoryImpl) getAccount(
	address string,
) (*domain.Account, error) {
	account, ok := r.store.accounts[address]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a := cloneAccount(account)
	return &a, nil
}
