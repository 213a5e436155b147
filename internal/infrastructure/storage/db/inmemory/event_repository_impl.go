package inmemory

import (
	"context"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type eventInmemoryStore struct {
	events []domain.Event
	locker *sync.RWMutex
}

type eventRepositoryImpl struct {
	transactional
	store *eventInmemoryStore
}

// NewEventRepositoryImpl returns a new inmemory EventRepository
// implementation.
func NewEventRepositoryImpl() domain.EventRepository {
	return newEventRepositoryImpl()
}

func newEventRepositoryImpl() *eventRepositoryImpl {
	return &eventRepositoryImpl{
		store: &eventInmemoryStore{
			events: make([]domain.Event, 0),
			locker: &sync.RWMutex{},
		},
	}
}

func (r *eventRepositoryImpl) AddEvents(
	ctx context.Context, events ...domain.Event,
) ([]domain.Event, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	count := len(r.store.events)
	added := make([]domain.Event, 0, len(events))
	for _, e := range events {
		e = cloneEvent(e)
		e.Sequence = uint64(len(r.store.events) + 1)
		r.store.events = append(r.store.events, e)
		added = append(added, cloneEvent(e))
	}

	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.events = r.store.events[:count]
	})
	return added, nil
}

func (r *eventRepositoryImpl) GetEvents(
	_ context.Context, filter domain.EventFilter,
) ([]domain.Event, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	events := make([]domain.Event, 0)
	for _, e := range r.store.events {
		if !filter.Match(e) {
			continue
		}
		events = append(events, cloneEvent(e))
		if filter.Limit > 0 && len(events) >= filter.Limit {
			break
		}
	}
	return events, nil
}

func (r *eventRepositoryImpl) LastSequence(_ context.Context) (uint64, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return uint64(len(r.store.events)), nil
}
