package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/zkramp/ramp-daemon/internal/core/domain"
)

type intentInmemoryStore struct {
	intents map[string]domain.Intent
	locker  *sync.RWMutex
}

type intentRepositoryImpl struct {
	transactional
	store *intentInmemoryStore
}

// NewIntentRepositoryImpl returns a new inmemory IntentRepository
// implementation.
func NewIntentRepositoryImpl() domain.IntentRepository {
	return newIntentRepositoryImpl()
}

func newIntentRepositoryImpl() *intentRepositoryImpl {
	return &intentRepositoryImpl{
		store: &intentInmemoryStore{
			intents: make(map[string]domain.Intent),
			locker:  &sync.RWMutex{},
		},
	}
}

func (r *intentRepositoryImpl) AddIntent(
	ctx context.Context, intent *domain.Intent,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.intents[intent.ID]; ok {
		return domain.ErrIntentAlreadyExists
	}

	r.store.intents[intent.ID] = *intent
	id := intent.ID
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		delete(r.store.intents, id)
	})
	return nil
}

func (r *intentRepositoryImpl) GetIntent(
	_ context.Context, id string,
) (*domain.Intent, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	intent, ok := r.store.intents[id]
	if !ok {
		return nil, domain.ErrIntentNotFound
	}
	return &intent, nil
}

func (r *intentRepositoryImpl) GetAllIntents(
	_ context.Context,
) ([]*domain.Intent, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findIntents(func(domain.Intent) bool { return true }), nil
}

func (r *intentRepositoryImpl) GetIntentsForDeposit(
	_ context.Context, depositID uint64,
) ([]*domain.Intent, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findIntents(func(i domain.Intent) bool {
		return i.DepositID == depositID
	}), nil
}

func (r *intentRepositoryImpl) GetIntentsForTaker(
	_ context.Context, taker string,
) ([]*domain.Intent, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findIntents(func(i domain.Intent) bool {
		return domain.SameAddress(i.Taker, taker)
	}), nil
}

func (r *intentRepositoryImpl) GetOpenIntentsExpiredAt(
	_ context.Context, now int64,
) ([]*domain.Intent, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return r.findIntents(func(i domain.Intent) bool {
		return i.IsOpen() && i.IsExpired(now)
	}), nil
}

func (r *intentRepositoryImpl) CountIntents(_ context.Context) (uint64, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	return uint64(len(r.store.intents)), nil
}

func (r *intentRepositoryImpl) UpdateIntent(
	ctx context.Context,
	id string,
	updateFn func(i *domain.Intent) (*domain.Intent, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, ok := r.store.intents[id]
	if !ok {
		return domain.ErrIntentNotFound
	}

	intent := current
	updatedIntent, err := updateFn(&intent)
	if err != nil {
		return err
	}

	r.store.intents[id] = *updatedIntent
	recordUndo(ctx, func() {
		r.store.locker.Lock()
		defer r.store.locker.Unlock()
		r.store.intents[id] = current
	})
	return nil
}

func (r *intentRepositoryImpl) findIntents(
	filter func(domain.Intent) bool,
) []*domain.Intent {
	intents := make([]*domain.Intent, 0)
	for _, intent := range r.store.intents {
		if filter(intent) {
			i := intent
			intents = append(intents, &i)
		}
	}
	sort.SliceStable(intents, func(i, j int) bool {
		if intents[i].CreatedAt == intents[j].CreatedAt {
			return intents[i].Nonce < intents[j].Nonce
		}
		return intents[i].CreatedAt < intents[j].CreatedAt
	})
	return intents
}
