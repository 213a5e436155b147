package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type intentRepositoryImpl struct {
	transactional
}

func (r *intentRepositoryImpl) AddIntent(
	ctx context.Context, intent *domain.Intent,
) error {
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxInsert(tx, intent.ID, *intent)
	} else {
		err = r.store.Insert(intent.ID, *intent)
	}
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrIntentAlreadyExists
		}
		return err
	}
	return nil
}

func (r *intentRepositoryImpl) GetIntent(
	ctx context.Context, id string,
) (*domain.Intent, error) {
	return r.getIntent(ctx, id)
}

func (r *intentRepositoryImpl) GetAllIntents(
	ctx context.Context,
) ([]*domain.Intent, error) {
	return r.findIntents(ctx, &badgerhold.Query{})
}

func (r *intentRepositoryImpl) GetIntentsForDeposit(
	ctx context.Context, depositID uint64,
) ([]*domain.Intent, error) {
	return r.findIntents(ctx, badgerhold.Where("DepositID").Eq(depositID))
}

func (r *intentRepositoryImpl) GetIntentsForTaker(
	ctx context.Context, taker string,
) ([]*domain.Intent, error) {
	query := badgerhold.Where("Taker").Eq(domain.NormalizeAddress(taker))
	return r.findIntents(ctx, query)
}

func (r *intentRepositoryImpl) GetOpenIntentsExpiredAt(
	ctx context.Context, now int64,
) ([]*domain.Intent, error) {
	intents, err := r.findIntents(ctx, badgerhold.Where("ExpiresAt").Lt(now))
	if err != nil {
		return nil, err
	}

	open := make([]*domain.Intent, 0, len(intents))
	for _, i := range intents {
		if i.IsOpen() {
			open = append(open, i)
		}
	}
	return open, nil
}

func (r *intentRepositoryImpl) CountIntents(
	ctx context.Context,
) (uint64, error) {
	if tx := getTx(ctx); tx != nil {
		return r.store.TxCount(tx, domain.Intent{}, nil)
	}
	return r.store.Count(domain.Intent{}, nil)
}

func (r *intentRepositoryImpl) UpdateIntent(
	ctx context.Context,
	id string,
	updateFn func(i *domain.Intent) (*domain.Intent, error),
) error {
	intent, err := r.getIntent(ctx, id)
	if err != nil {
		return err
	}

	updatedIntent, err := updateFn(intent)
	if err != nil {
		return err
	}

	if tx := getTx(ctx); tx != nil {
		return r.store.TxUpdate(tx, id, *updatedIntent)
	}
	return r.store.Update(id, *updatedIntent)
}

func (r *intentRepositoryImpl) getIntent(
	ctx context.Context, id string,
) (*domain.Intent, error) {
	var intent domain.Intent
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxGet(tx, id, &intent)
	} else {
		err = r.store.Get(id, &intent)
	}
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

func (r *intentRepositoryImpl) findIntents(
	ctx context.Context, query *badgerhold.Query,
) ([]*domain.Intent, error) {
	var intents []domain.Intent
	var err error

	query.SortBy("CreatedAt", "Nonce")
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &intents, query)
	} else {
		err = r.store.Find(&intents, query)
	}
	if err != nil {
		return nil, err
	}

	res := make([]*domain.Intent, 0, len(intents))
	for i := range intents {
		res = append(res, &intents[i])
	}
	return res, nil
}
