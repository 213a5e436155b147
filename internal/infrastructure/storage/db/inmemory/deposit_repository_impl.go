package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type depositInmemoryStore struct {
	deposits map[uint64]domain.Deposit
	locker   *sync.RWMutex
}

type depositRepositoryImpl struct {
	transactional
	store *depositInmemoryStore
}

// NewDepositRepositoryImpl returns a new inmemory DepositRepository
// implementation.
func NewDepositRepositoryImpl() domain.DepositRepository {
	return newDepositRepositoryImpl()
}

func newDepositRepositoryImpl() *depositRepositoryImpl {
	return &depositRepositoryImpl{
		store: &depositInmemoryStore{
			deposits: make(map[uint64]domain.Deposit),
			locker:   &sync.RWMutex{},
		},
	}
}

func (r *depositRepositoryImpl) AddDeposit(
	ctx context.Context, deposit *domain.Deposit,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.deposits[deposit.ID]; ok {
		return domain.ErrDepositAlreadyExists
	}

	r.store.deposits[deposit.ID] = cloneDeposit(*deposit)
	id := deposit.ID
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.deposits, id)
	})
	return nil
}

func (r *depositRepositoryImpl) GetDeposit(
	_ context.Context, id uint64,
) (*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	deposit, ok := r.store.deposits[id]
	if !ok {
		return nil, domain.ErrDepositNotFound
	}
	d := cloneDeposit(deposit)
	return &d, nil
}

func (r *depositRepositoryImpl) GetAllDeposits(
	_ context.Context,
) ([]*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findDeposits(func(domain.Deposit) bool { return true }), nil
}

func (r *depositRepositoryImpl) GetDepositsForDepositor(
	_ context.Context, depositor string,
) ([]*domain.Deposit, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findDeposits(func(d domain.Deposit) bool {
		return domain.SameAddress(d.Depositor, depositor)
	}), nil
}

func (r *depositRepositoryImpl) CountDeposits(_ context.Context) (uint64, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return uint64(len(r.store.deposits)), nil
}

func (r *depositRepositoryImpl) UpdateDeposit(
	ctx context.Context,
	id uint64,
	updateFn func(d *domain.Deposit) (*domain.Deposit, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, ok := r.store.deposits[id]
	if !ok {
		return domain.ErrDepositNotFound
	}

	deposit := cloneDeposit(current)
	updatedDeposit, err := updateFn(&deposit)
	if err != nil {
		return err
	}

	r.store.deposits[id] = cloneDeposit(*updatedDeposit)
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.deposits[id] = current
	})
	return nil
}

func (r *depositRepositoryImpl) findDeposits(
	filter func(domain.Deposit) bool,
) []*domain.Deposit {
	deposits := make([]*domain.Deposit, 0)
	for _, deposit := range r.store.deposits {
		if filter(deposit) {
			d := cloneDeposit(deposit)
			deposits = append(deposits, &d)
		}
	}
	sort.SliceStable(deposits, func(i, j int) bool {
		return deposits[i].ID < deposits[j].ID
	})
	return deposits
}
