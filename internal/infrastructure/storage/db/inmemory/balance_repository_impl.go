package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type balanceInmemoryStore struct {
	balances map[string]domain.Balance
	locker   *sync.RWMutex
}

type balanceRepositoryImpl struct {
	transactional
	store *balanceInmemoryStore
}

// NewBalanceRepositoryImpl returns a new inmemory BalanceRepository
// implementation.
func NewBalanceRepositoryImpl() domain.BalanceRepository {
	return newBalanceRepositoryImpl()
}

func newBalanceRepositoryImpl() *balanceRepositoryImpl {
	return &balanceRepositoryImpl{
		store: &balanceInmemoryStore{
			balances: make(map[string]domain.Balance),
			locker:   &sync.RWMutex{},
		},
	}
}

func (r *balanceRepositoryImpl) GetBalance(
	_ context.Context, owner, token string,
) (*domain.Balance, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	balance := r.getBalance(owner, token)
	return &balance, nil
}

func (r *balanceRepositoryImpl) GetBalancesForOwner(
	_ context.Context, owner string,
) ([]*domain.Balance, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	balances := make([]*domain.Balance, 0)
	for _, balance := range r.store.balances {
		if balance.Amount > 0 && domain.SameAddress(balance.Owner, owner) {
			b := balance
			balances = append(balances, &b)
		}
	}
	sort.SliceStable(balances, func(i, j int) bool {
		return balances[i].Token < balances[j].Token
	})
	return balances, nil
}

func (r *balanceRepositoryImpl) UpdateBalance(
	ctx context.Context,
	owner, token string,
	updateFn func(b *domain.Balance) (*domain.Balance, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	key := domain.BalanceKey(owner, token)
	current, existed := r.store.balances[key]
	balance := r.getBalance(owner, token)

	updatedBalance, err := updateFn(&balance)
	if err != nil {
		return err
	}

	r.store.balances[key] = *updatedBalance
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		if !existed {
			delete(r.store.balances, key)
			return
		}
		r.store.balances[key] = current
	})
	return nil
}

func (r *balanceRepositoryImpl) getBalance(owner, token string) domain.Balance {
	balance, ok := r.store.balances[domain.BalanceKey(owner, token)]
	if !ok {
		return domain.Balance{
			Owner: domain.NormalizeAddress(owner),
			Token: domain.NormalizeAddress(token),
		}
	}
	return balance
}
