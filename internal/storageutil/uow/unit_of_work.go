// Package uow runs operations spanning several repositories as a single
// all-or-nothing step.
package uow

import (
	"context"
	"fmt"
)

// Transactional is implemented by any repository able to open a transaction.
type Transactional interface {
	Begin() (Tx, error)
}

// Tx is an open transaction.
type Tx interface {
	Commit() error
	Rollback() error
}

// ContextProvider lets repositories backed by the same store share one
// transaction: all of them are keyed by the returned value.
type ContextProvider interface {
	ContextKey() interface{}
}

type UnitOfWork struct {
	repositories []Transactional
}

func NewUnitOfWork(repositories ...Transactional) *UnitOfWork {
	return &UnitOfWork{repositories}
}

// Run opens a transaction for every repository, then calls fn with a context
// carrying them, keyed by the repository or by its ContextKey.
// Transactions are committed in order if fn succeeds. They are all rolled
// back if fn fails, panics, or if any commit fails.
func (u *UnitOfWork) Run(
	ctx context.Context, fn func(ctx context.Context) error,
) (err error) {
	ctx, txs, err := u.begin(ctx)
	if err != nil {
		if rbErr := rollback(txs); rbErr != nil {
			return rbErr
		}
		return err
	}

	defer func() {
		err = finish(txs, err)
	}()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("recovered: %v", rec)
		}
	}()

	return fn(ctx)
}

func (u *UnitOfWork) begin(
	ctx context.Context,
) (context.Context, []Tx, error) {
	txs := make([]Tx, 0, len(u.repositories))
	started := make(map[interface{}]struct{})

	for _, repo := range u.repositories {
		var key interface{} = repo
		if cp, ok := repo.(ContextProvider); ok {
			key = cp.ContextKey()
		}
		if _, ok := started[key]; ok {
			continue
		}

		tx, err := repo.Begin()
		if err != nil {
			return ctx, txs, err
		}
		started[key] = struct{}{}
		ctx = context.WithValue(ctx, key, tx)
		txs = append(txs, tx)
	}
	return ctx, txs, nil
}

// finish commits txs if err is nil, otherwise rolls them back. A failing
// commit makes all txs roll back.
func finish(txs []Tx, err error) error {
	if err == nil {
		for _, tx := range txs {
			if err = tx.Commit(); err != nil {
				break
			}
		}
		if err == nil {
			return nil
		}
	}
	if rbErr := rollback(txs); rbErr != nil {
		return rbErr
	}
	return err
}

// rollback stops at the first failure.
func rollback(txs []Tx) error {
	for _, tx := range txs {
		if err := tx.Rollback(); err != nil {
			return err
		}
	}
	return nil
}
