package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type accountRepositoryImpl struct {
	transactional
}

func (r *accountRepositoryImpl) AddAccount(
	ctx context.Context, account *domain.Account,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxInsert(tx, account.Address, *account)
	} else {
		err = r.store.Insert(account.Address, *account)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrAccountAlreadyExists
		}
		return err
	}
	return nil
}

func (r *accountRepositoryImpl) GetAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	return r.getAccount(ctx, domain.NormalizeAddress(address))
}

func (r *accountRepositoryImpl) GetAccountByIDHash(
	ctx context.Context, idHash string,
) (*domain.Account, error) {
	query := badgerhold.Where("IDHash").Eq(domain.NormalizeHash(idHash))
	accounts, err := r.findAccounts(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return accounts[0], nil
}

func (r *accountRepositoryImpl) GetAllAccounts(
	ctx context.Context,
) ([]*domain.Account, error) {
	return r.findAccounts(ctx, &badgerhold.Query{})
}

func (r *accountRepositoryImpl) UpdateAccount(
	ctx context.Context,
	address string,
	updateFn func(a *domain.Account) (*domain.Account, error),
) error {
	address = domain.NormalizeAddress(address)
	account, err := r.getAccount(ctx, address)
	if err != nil {
		return err
	}

	updatedAccount, err := updateFn(account)
	if err != nil {
		return err
	}

	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpdate(tx, address, *updatedAccount)
	}
	return r.store.Update(address, *updatedAccount)
}

func (r *accountRepositoryImpl) getAccount(
	ctx context.Context, address string,
) (*domain.Account, error) {
	var account domain.Account
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, address, &account)
	} else {
		err = r.store.Get(address, &account)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepositoryImpl) findAccounts(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.Account, error) {
	var accounts []domain.Account
	var err error

	query.SortBy("RegisteredAt")
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &accounts, query)
	} else {
		err = r.store.Find(&accounts, query)
	}
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Account, 0, len(accounts))
	for i := range accounts {
		res = append(res, &accounts[i])
	}
	return res, nil
}
