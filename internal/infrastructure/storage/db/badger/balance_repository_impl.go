package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type balanceRepositoryImpl struct {
	transactional
}

func (r *balanceRepositoryImpl) GetBalance(
	ctx context.Context, owner, token string,
) (*domain.Balance, error) {
	return r.getBalance(ctx, owner, token)
}

func (r *balanceRepositoryImpl) GetBalancesForOwner(
	ctx context.Context, owner string,
) ([]*domain.Balance, error) {
	var balances []domain.Balance
	var err error

	query := badgerhold.Where("Owner").Eq(domain.NormalizeAddress(owner)).
		And("Amount").Gt(uint64(0)).
		SortBy("Token")
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &balances, query)
	} else {
		err = r.store.Find(&balances, query)
	}
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Balance, 0, len(balances))
	for i := range balances {
		res = append(res, &balances[i])
	}
	return res, nil
}

func (r *balanceRepositoryImpl) UpdateBalance(
	ctx context.Context,
	owner, token string,
	updateFn func(b *domain.Balance) (*domain.Balance, error),
) error {
	balance, err := r.getBalance(ctx, owner, token)
	if err != nil {
		return err
	}

	updatedBalance, err := updateFn(balance)
	if err != nil {
		return err
	}

	key := updatedBalance.Key()
	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpsert(tx, key, *updatedBalance)
	}
	return r.store.Upsert(key, *updatedBalance)
}

func (r *balanceRepositoryImpl) getBalance(
	ctx context.Context, owner, token string,
) (*domain.Balance, error) {
	var balance domain.Balance
	var err error

	key := domain.BalanceKey(owner, token)
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, key, &balance)
	} else {
		err = r.store.Get(key, &balance)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return &domain.Balance{
				Owner: domain.NormalizeAddress(owner),
				Token: domain.NormalizeAddress(token),
			}, nil
		}
		return nil, err
	}
	return &balance, nil
}
