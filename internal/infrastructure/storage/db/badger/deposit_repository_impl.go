package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type depositRepositoryImpl struct {
	transactional
}

func (r *depositRepositoryImpl) AddDeposit(
	ctx context.Context, deposit *domain.Deposit,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxInsert(tx, deposit.ID, *deposit)
	} else {
		err = r.store.Insert(deposit.ID, *deposit)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrDepositAlreadyExists
		}
		return err
	}
	return nil
}

func (r *depositRepositoryImpl) GetDeposit(
	ctx context.Context, id uint64,
) (*domain.Deposit, error) {
	return r.getDeposit(ctx, id)
}

func (r *depositRepositoryImpl) GetAllDeposits(
	ctx context.Context,
) ([]*domain.Deposit, error) {
	return r.findDeposits(ctx, &badgerhold.Query{})
}

func (r *depositRepositoryImpl) GetDepositsForDepositor(
	ctx context.Context, depositor string,
) ([]*domain.Deposit, error) {
	query := badgerhold.Where("Depositor").Eq(domain.NormalizeAddress(depositor))
	return r.findDeposits(ctx, query)
}

func (r *depositRepositoryImpl) CountDeposits(
	ctx context.Context,
) (uint64, error) {
	if tx := getTx(ctx); tx != nil {
		return r.store.TxCount(tx, domain.Deposit{}, nil)
	}
	return r.store.Count(domain.Deposit{}, nil)
}

func (r *depositRepositoryImpl) UpdateDeposit(
	ctx context.Context,
	id uint64,
	updateFn func(d *domain.Deposit) (*domain.Deposit, error),
) error {
	deposit, err := r.getDeposit(ctx, id)
	if err != nil {
		return err
	}

	updatedDeposit, err := updateFn(deposit)
	if err != nil {
		return err
	}

	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpdate(tx, id, *updatedDeposit)
	}
	return r.store.Update(id, *updatedDeposit)
}

func (r *depositRepositoryImpl) getDeposit(
	ctx context.Context, id uint64,
) (*domain.Deposit, error) {
	var deposit domain.Deposit
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, id, &deposit)
	} else {
		err = r.store.Get(id, &deposit)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrDepositNotFound
		}
		return nil, err
	}
	return &deposit, nil
}

func (r *depositRepositoryImpl) findDeposits(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.Deposit, error) {
	var deposits []domain.Deposit
	var err error

	query.SortBy("ID")
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &deposits, query)
	} else {
		err = r.store.Find(&deposits, query)
	}
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Deposit, 0, len(deposits))
	for i := range deposits {
		res = append(res, &deposits[i])
	}
	return res, nil
}
