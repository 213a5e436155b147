package dbbadger

import (
	"context"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type eventRepositoryImpl struct {
	transactional
}

func (r *eventRepositoryImpl) AddEvents(
	ctx context.Context, events ...domain.Event,
) ([]domain.Event, error) {
	last, err := r.LastSequence(ctx)
	if err != nil {
		return nil, err
	}

	tx := getTx(ctx)
	added := make([]domain.Event, 0, len(events))
	for _, e := range events {
		last++
		e.Sequence = last
		if tx != nil {
			err = r.store.TxInsert(tx, e.Sequence, e)
		} else {
			err = r.store.Insert(e.Sequence, e)
		}
		if err != nil {
			return nil, err
		}
		added = append(added, e)
	}
	return added, nil
}

func (r *eventRepositoryImpl) GetEvents(
	ctx context.Context, filter domain.EventFilter,
) ([]domain.Event, error) {
	query := badgerhold.Where("Sequence").Gt(filter.AfterSequence)
	if filter.Type != "" {
		query = query.And("Type").Eq(filter.Type)
	}
	if filter.DepositID > 0 {
		query = query.And("DepositID").Eq(filter.DepositID)
	}
	if filter.IntentID != "" {
		query = query.And("IntentID").Eq(filter.IntentID)
	}
	query = query.SortBy("Sequence")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var events []domain.Event
	var err error
	if tx := getTx(ctx); tx != nil {
		err = r.store.TxFind(tx, &events, query)
	} else {
		err = r.store.Find(&events, query)
	}
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = make([]domain.Event, 0)
	}
	return events, nil
}

func (r *eventRepositoryImpl) LastSequence(ctx context.Context) (uint64, error) {
	if tx := getTx(ctx); tx != nil {
		return r.store.TxCount(tx, domain.Event{}, nil)
	}
	return r.store.Count(domain.Event{}, nil)
}
